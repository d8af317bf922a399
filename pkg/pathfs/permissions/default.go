package permissions

// UmaskQuerier reports the process umask. ok is false when the platform
// has no umask.
type UmaskQuerier interface {
	Umask() (mask int, ok bool)
}

// Default derives the permissions new entries receive from the umask
// reported by q, or FallbackMode when q is nil or reports none.
// Callers compute it once and pass it to the components that create
// directories.
func Default(q UmaskQuerier) Permissions {
	if q == nil {
		return FromMode(FallbackMode)
	}
	mask, ok := q.Umask()
	if !ok {
		return FromMode(FallbackMode)
	}
	return FromMode(^uint32(mask) & 0o777)
}

// PartialRole is a Role where nil fields are unspecified.
type PartialRole struct {
	Read    *bool
	Write   *bool
	Execute *bool
}

// Partial describes a permission change. Nil roles and nil flags keep the
// value of the base they are merged over.
type Partial struct {
	Owner *PartialRole
	Group *PartialRole
	Other *PartialRole
}

// Merge returns base with every flag specified in p overridden.
func Merge(base Permissions, p Partial) Permissions {
	return Permissions{
		Owner: mergeRole(base.Owner, p.Owner),
		Group: mergeRole(base.Group, p.Group),
		Other: mergeRole(base.Other, p.Other),
	}
}

func mergeRole(base Role, p *PartialRole) Role {
	if p == nil {
		return base
	}
	if p.Read != nil {
		base.Read = *p.Read
	}
	if p.Write != nil {
		base.Write = *p.Write
	}
	if p.Execute != nil {
		base.Execute = *p.Execute
	}
	return base
}

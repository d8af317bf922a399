package filesystem

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

const maxSymlinkHops = 40

type nodeKind int

const (
	kindFile nodeKind = iota
	kindDir
	kindSymlink
)

type memNode struct {
	kind    nodeKind
	perm    uint32 // low twelve bits: permissions plus setuid, setgid, sticky
	uid     int
	gid     int
	inode   uint64
	data    []byte
	target  string
	modTime time.Time
}

func (n *memNode) rawMode() uint32 {
	switch n.kind {
	case kindDir:
		return ModeDir | n.perm
	case kindSymlink:
		return ModeSymlink | n.perm
	}
	return ModeRegular | n.perm
}

// memInfo implements fs.FileInfo for MemFS entries. It is a snapshot taken
// under the filesystem lock.
type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func newMemInfo(name string, n *memNode) memInfo {
	return memInfo{name: name, size: int64(len(n.data)), mode: FileMode(n.rawMode()), modTime: n.modTime}
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }

// MemFS is an in-memory Provider using POSIX path syntax. It supports
// symbolic and hard links, ownership, a configurable umask and injected
// failures. MemFS is safe for concurrent use.
type MemFS struct {
	mu       sync.RWMutex
	nodes    map[string]*memNode
	cwd      string
	umask    int
	hasUmask bool
	uid      int
	gid      int
	device   uint64
	inodes   uint64
	now      func() time.Time
	users    map[int]string
	groups   map[int]string
	failures map[string]error
}

// NewMemFS returns an empty filesystem containing only "/", with umask
// 022 and the working directory at the root.
func NewMemFS() *MemFS {
	m := &MemFS{
		nodes:    make(map[string]*memNode),
		cwd:      "/",
		umask:    0o022,
		hasUmask: true,
		uid:      1000,
		gid:      1000,
		device:   1,
		now:      time.Now,
		users:    map[int]string{0: "root", 1000: "user"},
		groups:   map[int]string{0: "root", 1000: "user"},
		failures: make(map[string]error),
	}
	m.nodes["/"] = m.newNode(kindDir, 0o755)
	return m
}

var _ Provider = (*MemFS)(nil)

// SetUmask sets the reported umask. ok false simulates a platform without
// a umask.
func (m *MemFS) SetUmask(mask int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.umask, m.hasUmask = mask, ok
}

// SetIdentity sets the uid and gid used for access checks and new entries.
func (m *MemFS) SetIdentity(uid, gid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uid, m.gid = uid, gid
}

// AddUser registers a user name.
func (m *MemFS) AddUser(uid int, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[uid] = name
}

// AddGroup registers a group name.
func (m *MemFS) AddGroup(gid int, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[gid] = name
}

// FailOn makes the operation op on name return err. op is the provider
// method name, such as "Remove" or "CopyFile". A nil err clears the failure.
func (m *MemFS) FailOn(op, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := op + "\x00" + m.abs(name)
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// WriteFile creates or replaces a regular file.
func (m *MemFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := m.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile returns the content of a regular file.
func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, n, err := m.lookup("read", name, true)
	if err != nil {
		return nil, err
	}
	if n.kind == kindDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: syscall.EISDIR}
	}
	return bytes.Clone(n.data), nil
}

func (m *MemFS) newNode(kind nodeKind, perm uint32) *memNode {
	m.inodes++
	return &memNode{kind: kind, perm: perm & 0o7777, uid: m.uid, gid: m.gid, inode: m.inodes, modTime: m.now()}
}

func (m *MemFS) abs(name string) string {
	if !path.IsAbs(name) {
		name = path.Join(m.cwd, name)
	}
	return path.Clean(name)
}

func (m *MemFS) fail(op, name string) error {
	if err, ok := m.failures[op+"\x00"+m.abs(name)]; ok {
		return &fs.PathError{Op: op, Path: name, Err: err}
	}
	return nil
}

// lookup resolves name to its canonical key and node. Symbolic links in
// intermediate components are always followed; the last component is
// followed when followLast is set.
func (m *MemFS) lookup(op, name string, followLast bool) (string, *memNode, error) {
	key, n, err := m.walk(m.abs(name), followLast, 0)
	if err != nil {
		return key, nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	return key, n, nil
}

func (m *MemFS) walk(p string, followLast bool, hops int) (string, *memNode, error) {
	if hops > maxSymlinkHops {
		return p, nil, syscall.ELOOP
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	cur, node := "/", m.nodes["/"]
	for i, part := range parts {
		if part == "" {
			continue
		}
		if node.kind != kindDir {
			return cur, nil, syscall.ENOTDIR
		}
		next := path.Join(cur, part)
		child, ok := m.nodes[next]
		if !ok {
			return next, nil, fs.ErrNotExist
		}
		last := i == len(parts)-1
		if child.kind == kindSymlink && (!last || followLast) {
			target := child.target
			if !path.IsAbs(target) {
				target = path.Join(cur, target)
			}
			rest := path.Join(append([]string{target}, parts[i+1:]...)...)
			return m.walk(path.Clean(rest), followLast, hops+1)
		}
		cur, node = next, child
	}
	return cur, node, nil
}

// parent resolves the directory that will hold name and returns the key
// name would have in it.
func (m *MemFS) parent(op, name string) (string, error) {
	p := m.abs(name)
	if p == "/" {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrExist}
	}
	dirKey, dir, err := m.walk(path.Dir(p), true, 0)
	if err != nil {
		return "", &fs.PathError{Op: op, Path: name, Err: err}
	}
	if dir.kind != kindDir {
		return "", &fs.PathError{Op: op, Path: name, Err: syscall.ENOTDIR}
	}
	return path.Join(dirKey, path.Base(p)), nil
}

func (m *MemFS) children(key string) []string {
	prefix := key + "/"
	if key == "/" {
		prefix = "/"
	}
	var names []string
	for k := range m.nodes {
		if k == key || !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names
}

func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Stat", name); err != nil {
		return nil, err
	}
	key, n, err := m.lookup("stat", name, true)
	if err != nil {
		return nil, err
	}
	return newMemInfo(path.Base(key), n), nil
}

func (m *MemFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Lstat", name); err != nil {
		return nil, err
	}
	key, n, err := m.lookup("lstat", name, false)
	if err != nil {
		return nil, err
	}
	return newMemInfo(path.Base(key), n), nil
}

func (m *MemFS) Identify(name string) (Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Identify", name); err != nil {
		return Identity{}, err
	}
	_, n, err := m.lookup("stat", name, true)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Mode: n.rawMode(), UID: n.uid, GID: n.gid, Device: m.device, Inode: n.inode}, nil
}

func (m *MemFS) ReadDirNames(name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("ReadDirNames", name); err != nil {
		return nil, err
	}
	key, n, err := m.lookup("readdir", name, true)
	if err != nil {
		return nil, err
	}
	if n.kind != kindDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
	}
	names := m.children(key)
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (m *MemFS) Access(name string, mode AccessMode) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Access", name); err != nil {
		return err
	}
	_, n, err := m.lookup("access", name, true)
	if err != nil {
		return err
	}
	if m.uid == 0 {
		return nil
	}
	var bits uint32
	switch {
	case n.uid == m.uid:
		bits = n.perm >> 6 & 0o7
	case n.gid == m.gid:
		bits = n.perm >> 3 & 0o7
	default:
		bits = n.perm & 0o7
	}
	if (mode&AccessRead != 0 && bits&0o4 == 0) || (mode&AccessWrite != 0 && bits&0o2 == 0) {
		return &fs.PathError{Op: "access", Path: name, Err: fs.ErrPermission}
	}
	return nil
}

func (m *MemFS) Canonical(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, _, err := m.lookup("canonical", name, true)
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *MemFS) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdir(name, perm)
}

func (m *MemFS) mkdir(name string, perm fs.FileMode) error {
	if err := m.fail("Mkdir", name); err != nil {
		return err
	}
	key, err := m.parent("mkdir", name)
	if err != nil {
		return err
	}
	if _, exists := m.nodes[key]; exists {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	m.nodes[key] = m.newNode(kindDir, uint32(perm.Perm())&^uint32(m.umask))
	return nil
}

// MkdirAll implements MutationProvider with os.MkdirAll semantics.
func (m *MemFS) MkdirAll(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdirAll(name, perm)
}

func (m *MemFS) mkdirAll(name string, perm fs.FileMode) error {
	if err := m.fail("MkdirAll", name); err != nil {
		return err
	}
	p := m.abs(name)
	if _, n, err := m.walk(p, true, 0); err == nil {
		if n.kind == kindDir {
			return nil
		}
		return &fs.PathError{Op: "mkdir", Path: name, Err: syscall.ENOTDIR}
	}
	if p != "/" {
		if err := m.mkdirAll(path.Dir(p), perm); err != nil {
			return err
		}
	}
	return m.mkdir(p, perm)
}

func (m *MemFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Remove", name); err != nil {
		return err
	}
	key, n, err := m.lookup("remove", name, false)
	if err != nil {
		return err
	}
	if key == "/" {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.EBUSY}
	}
	if n.kind == kindDir && len(m.children(key)) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
	}
	delete(m.nodes, key)
	return nil
}

func (m *MemFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Rename", oldpath); err != nil {
		return err
	}
	from, n, err := m.lookup("rename", oldpath, false)
	if err != nil {
		return err
	}
	to, err := m.parent("rename", newpath)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if strings.HasPrefix(to, from+"/") {
		return &fs.PathError{Op: "rename", Path: newpath, Err: syscall.EINVAL}
	}
	if existing, ok := m.nodes[to]; ok {
		if existing.kind == kindDir && (n.kind != kindDir || len(m.children(to)) > 0) {
			return &fs.PathError{Op: "rename", Path: newpath, Err: syscall.EEXIST}
		}
		if existing.kind != kindDir && n.kind == kindDir {
			return &fs.PathError{Op: "rename", Path: newpath, Err: syscall.ENOTDIR}
		}
	}
	moved := map[string]*memNode{to: n}
	for k, v := range m.nodes {
		if strings.HasPrefix(k, from+"/") {
			moved[to+k[len(from):]] = v
			delete(m.nodes, k)
		}
	}
	delete(m.nodes, from)
	for k, v := range moved {
		m.nodes[k] = v
	}
	return nil
}

func (m *MemFS) Symlink(target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Symlink", link); err != nil {
		return err
	}
	key, err := m.parent("symlink", link)
	if err != nil {
		return err
	}
	if _, exists := m.nodes[key]; exists {
		return &fs.PathError{Op: "symlink", Path: link, Err: fs.ErrExist}
	}
	n := m.newNode(kindSymlink, 0o777)
	n.target = target
	m.nodes[key] = n
	return nil
}

func (m *MemFS) Link(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Link", newname); err != nil {
		return err
	}
	_, n, err := m.lookup("link", oldname, false)
	if err != nil {
		return err
	}
	if n.kind == kindDir {
		return &fs.PathError{Op: "link", Path: oldname, Err: syscall.EPERM}
	}
	key, err := m.parent("link", newname)
	if err != nil {
		return err
	}
	if _, exists := m.nodes[key]; exists {
		return &fs.PathError{Op: "link", Path: newname, Err: fs.ErrExist}
	}
	m.nodes[key] = n
	return nil
}

func (m *MemFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail("Readlink", name); err != nil {
		return "", err
	}
	_, n, err := m.lookup("readlink", name, false)
	if err != nil {
		return "", err
	}
	if n.kind != kindSymlink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
	}
	return n.target, nil
}

func (m *MemFS) CopyFile(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CopyFile", src); err != nil {
		return err
	}
	_, from, err := m.lookup("copy", src, true)
	if err != nil {
		return err
	}
	if from.kind == kindDir {
		return &fs.PathError{Op: "copy", Path: src, Err: syscall.EISDIR}
	}
	to, err := m.openForWrite("copy", dst, os.O_CREATE|os.O_TRUNC, fs.FileMode(from.perm&0o777))
	if err != nil {
		return err
	}
	to.data = bytes.Clone(from.data)
	to.modTime = m.now()
	return nil
}

// openForWrite returns the regular file node for name, creating it when
// flag has O_CREATE.
func (m *MemFS) openForWrite(op, name string, flag int, perm fs.FileMode) (*memNode, error) {
	_, n, err := m.lookup(op, name, true)
	switch {
	case err == nil:
		if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrExist}
		}
		if n.kind == kindDir {
			return nil, &fs.PathError{Op: op, Path: name, Err: syscall.EISDIR}
		}
		if flag&os.O_TRUNC != 0 {
			n.data = nil
		}
		return n, nil
	case flag&os.O_CREATE == 0 || !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	key, perr := m.parent(op, name)
	if perr != nil {
		return nil, perr
	}
	if existing, ok := m.nodes[key]; ok && existing.kind == kindSymlink {
		// Dangling link: create the file at the link target.
		return m.openForWrite(op, m.resolveLinkTarget(key, existing.target), flag, perm)
	}
	n = m.newNode(kindFile, uint32(perm.Perm())&^uint32(m.umask))
	m.nodes[key] = n
	return n, nil
}

func (m *MemFS) resolveLinkTarget(linkKey, target string) string {
	if path.IsAbs(target) {
		return target
	}
	return path.Join(path.Dir(linkKey), target)
}

func (m *MemFS) Chmod(name string, mode uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Chmod", name); err != nil {
		return err
	}
	_, n, err := m.lookup("chmod", name, true)
	if err != nil {
		return err
	}
	n.perm = mode & 0o7777
	return nil
}

func (m *MemFS) Chown(name string, uid, gid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Chown", name); err != nil {
		return err
	}
	_, n, err := m.lookup("chown", name, true)
	if err != nil {
		return err
	}
	if m.uid != 0 && (uid != -1 && uid != n.uid) {
		return &fs.PathError{Op: "chown", Path: name, Err: fs.ErrPermission}
	}
	if uid != -1 {
		n.uid = uid
	}
	if gid != -1 {
		n.gid = gid
	}
	return nil
}

func (m *MemFS) Chtimes(name string, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Chtimes", name); err != nil {
		return err
	}
	_, n, err := m.lookup("chtimes", name, true)
	if err != nil {
		return err
	}
	n.modTime = mtime
	return nil
}

// OpenFile implements MutationProvider. Writes become visible when the
// handle is closed.
func (m *MemFS) OpenFile(name string, flag int, perm fs.FileMode) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("OpenFile", name); err != nil {
		return nil, err
	}
	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0
	var (
		n   *memNode
		err error
	)
	if writable || flag&os.O_CREATE != 0 {
		n, err = m.openForWrite("open", name, flag, perm)
	} else {
		_, n, err = m.lookup("open", name, true)
	}
	if err != nil {
		return nil, err
	}
	h := &memFile{fs: m, node: n, name: path.Base(m.abs(name)), writable: writable}
	h.buf.Write(n.data)
	if flag&os.O_APPEND == 0 {
		h.wpos = 0
	} else {
		h.wpos = h.buf.Len()
	}
	return h, nil
}

func (m *MemFS) Getwd() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cwd, nil
}

func (m *MemFS) Chdir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, n, err := m.lookup("chdir", dir, true)
	if err != nil {
		return err
	}
	if n.kind != kindDir {
		return &fs.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}
	m.cwd = key
	return nil
}

func (m *MemFS) Separator() byte {
	return '/'
}

func (m *MemFS) Umask() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.umask, m.hasUmask
}

func (m *MemFS) LookupUser(uid int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.users[uid]
	return name, ok
}

func (m *MemFS) LookupGroup(gid int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.groups[gid]
	return name, ok
}

func (m *MemFS) UserID(name string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookupID(m.users, name)
}

func (m *MemFS) GroupID(name string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookupID(m.groups, name)
}

func lookupID(names map[int]string, name string) (int, bool) {
	for id, n := range names {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// memFile is an open MemFS handle.
type memFile struct {
	fs       *MemFS
	node     *memNode
	name     string
	buf      bytes.Buffer
	rpos     int
	wpos     int
	writable bool
	dirty    bool
	closed   bool
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, fs.ErrClosed
	}
	data := f.buf.Bytes()
	if f.rpos >= len(data) {
		return 0, io.EOF
	}
	n := copy(p, data[f.rpos:])
	f.rpos += n
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, fs.ErrClosed
	}
	if !f.writable {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: syscall.EBADF}
	}
	data := f.buf.Bytes()
	end := f.wpos + len(p)
	if end > len(data) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	copy(data[f.wpos:], p)
	f.buf.Reset()
	f.buf.Write(data)
	f.wpos = end
	f.dirty = true
	return len(p), nil
}

func (f *memFile) Stat() (fs.FileInfo, error) {
	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()
	return newMemInfo(f.name, f.node), nil
}

func (f *memFile) Close() error {
	if f.closed {
		return fs.ErrClosed
	}
	f.closed = true
	if !f.dirty {
		return nil
	}
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	f.node.data = bytes.Clone(f.buf.Bytes())
	f.node.modTime = f.fs.now()
	return nil
}

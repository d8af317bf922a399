package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/pathfs/pkg/pathfs"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// Example walking through the path algebra and tree operations on an
// in-memory filesystem.
func main() {
	mem := filesystem.NewMemFS()
	fsys := pathfs.New(mem, pathfs.WithLogger(pathfs.NewLogger(os.Stderr, zerolog.InfoLevel)))

	fmt.Println("=== Path algebra ===")
	fmt.Println(fsys.Resolve("/srv/app/current", "../releases/v2"))
	fmt.Println(fsys.Normal("/srv/./app/../app/logs/"))
	rel, err := fsys.Relative("/srv/app/bin/run", "/srv/app/etc/app.conf")
	if err != nil {
		log.Fatalf("Relative failed: %v", err)
	}
	fmt.Println(rel)

	fmt.Println("\n=== Building a tree ===")
	project := fsys.Path("/project")
	if err := project.Join("src", "cmd").MakeTree(); err != nil {
		log.Fatalf("MakeTree failed: %v", err)
	}
	if err := mem.WriteFile("/project/src/main.go", []byte("package main\n"), 0o644); err != nil {
		log.Fatalf("WriteFile failed: %v", err)
	}
	if err := fsys.SymbolicLink("src", "/project/current"); err != nil {
		log.Fatalf("SymbolicLink failed: %v", err)
	}
	if err := project.Join("src", "main.go").Touch(time.Time{}); err != nil {
		log.Fatalf("Touch failed: %v", err)
	}

	entries, err := project.Entries()
	if err != nil {
		log.Fatalf("Entries failed: %v", err)
	}
	for _, e := range entries {
		fmt.Printf("  %-20s %q\n", e.Kind, e.Path)
	}

	fmt.Println("\n=== Copy, lock down, remove ===")
	if err := project.CopyTree("/backup"); err != nil {
		log.Fatalf("CopyTree failed: %v", err)
	}
	if err := fsys.ChangePermissions("/backup/src", permissions.FromMode(0o700)); err != nil {
		log.Fatalf("ChangePermissions failed: %v", err)
	}
	p, err := fsys.Permissions("/backup/src")
	if err != nil {
		log.Fatalf("Permissions failed: %v", err)
	}
	fmt.Printf("✓ /backup/src is %s (%s)\n", p, p.Octal())

	if err := project.RemoveTree(); err != nil {
		log.Fatalf("RemoveTree failed: %v", err)
	}
	fmt.Printf("✓ /project removed, /backup kept: %v\n", fsys.IsDirectory("/backup/src"))
}

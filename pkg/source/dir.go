package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

// Dir lit des payloads enregistrés sous <root>/<endpoint>.json. Les paramètres sont ignorés :
// les fichiers sont supposés déjà filtrés.
type Dir struct {
	root fs.FS
}

// NewDir ouvre le répertoire root.
func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("payload dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("payload dir: %s n'est pas un répertoire", root)
	}
	return &Dir{root: os.DirFS(root)}, nil
}

// NewDirFS sert les payloads depuis un fs.FS (tests, embed).
func NewDirFS(fsys fs.FS) *Dir {
	return &Dir{root: fsys}
}

// Fetch implémente Source ; un fichier absent donne un payload nil.
func (d *Dir) Fetch(ctx context.Context, endpoint Endpoint, _ Params) (models.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.ToSlash(string(endpoint) + ".json")
	body, err := fs.ReadFile(d.root, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	p, err := payload.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

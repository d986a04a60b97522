//go:build !(js && wasm)

package utils

import (
	"context"
	"fmt"
	"os"

	"github.com/voxelsplace/cubeforge/api"
	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/store"
)

// RunSQLite2STL exports the state stored in a SQLite database. Empty dbPath
// and key fall back to the configured database and storage key.
func RunSQLite2STL(dbPath, outPath, key string, cfg *config.Config) error {
	if dbPath == "" {
		dbPath = cfg.Storage.SQLite
	}
	kv, err := store.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	st := cfg.Store(kv, key)
	state, ok, err := st.Load(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no state stored under %q in %s", st.Key(), dbPath)
	}
	raw, err := store.Encode(state)
	if err != nil {
		return err
	}
	out, err := api.StateToSTL(raw, cfg.UnitSizeMM, cfg.SolidName)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

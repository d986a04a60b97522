//go:build !(js && wasm)

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/utils"
)

var errUsage = errors.New("usage")

func usage() {
	fmt.Println("Usage: cubeforge <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  state2stl input.json output.stl               (export a saved state as ASCII STL)")
	fmt.Println("  state2glb input.json output.glb               (export a saved state as a binary glTF preview)")
	fmt.Println("  packstate input.json output.cubs [none|zlib|zstd]   (frame a state blob, storage.compression by default)")
	fmt.Println("  unpackstate input.cubs output.json            (restore the plain JSON form of a packed blob)")
	fmt.Println("  sqlite2stl [input.db] output.stl [key]        (export the state stored in a SQLite database, storage.sqlite by default)")
	fmt.Println("  genrandom <cubes> <amount> [output_dir]       (grow N random structures of the given size, storage.dir by default)")
	fmt.Println("Settings are read from $" + config.EnvConfig + "; $" + config.EnvUnitMM + " overrides the cube size.")
}

// run dispatches one command. args excludes the program name.
func run(args []string, cfg *config.Config) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "state2stl":
		if len(args) != 3 {
			return errUsage
		}
		return utils.RunState2STL(args[1], args[2], cfg)
	case "state2glb":
		if len(args) != 3 {
			return errUsage
		}
		return utils.RunState2GLB(args[1], args[2], cfg)
	case "packstate":
		switch len(args) {
		case 3:
			return utils.RunPackState(args[1], args[2], cfg.Storage.Compression)
		case 4:
			return utils.RunPackState(args[1], args[2], args[3])
		}
		return errUsage
	case "unpackstate":
		if len(args) != 3 {
			return errUsage
		}
		return utils.RunUnpackState(args[1], args[2])
	case "sqlite2stl":
		switch len(args) {
		case 2:
			return utils.RunSQLite2STL("", args[1], "", cfg)
		case 3:
			return utils.RunSQLite2STL(args[1], args[2], "", cfg)
		case 4:
			return utils.RunSQLite2STL(args[1], args[2], args[3], cfg)
		}
		return errUsage
	case "genrandom":
		if len(args) != 3 && len(args) != 4 {
			return errUsage
		}
		var size, amt int
		if _, err := fmt.Sscan(args[1], &size); err != nil {
			return err
		}
		if _, err := fmt.Sscan(args[2], &amt); err != nil {
			return err
		}
		outDir := ""
		if len(args) == 4 {
			outDir = args[3]
		}
		return utils.RunGenerateRandomStates(size, amt, outDir, cfg)
	}
	return errUsage
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if err := run(os.Args[1:], cfg); err != nil {
		if errors.Is(err, errUsage) {
			usage()
		} else {
			fmt.Println("Error:", err)
		}
		os.Exit(1)
	}

	fmt.Println("Operation completed!")
}

//go:build js && wasm

package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"syscall/js"
	"time"

	"github.com/voxelsplace/cubeforge/api"
	"github.com/voxelsplace/cubeforge/config"
	"github.com/voxelsplace/cubeforge/export"
	"github.com/voxelsplace/cubeforge/store"
	"github.com/voxelsplace/cubeforge/voxel"
)

// localStorageKV keeps blobs in window.localStorage. Values are strings
// there: plain JSON is stored as is, packed blobs as base64 behind
// packedPrefix.
type localStorageKV struct {
	storage js.Value
}

const packedPrefix = "cubs:"

func (l localStorageKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v := l.storage.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return nil, false, nil
	}
	text := v.String()
	if enc, ok := strings.CutPrefix(text, packedPrefix); ok {
		b, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", key, err)
		}
		return b, true, nil
	}
	return []byte(text), true, nil
}

func (l localStorageKV) Put(ctx context.Context, key string, value []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	// setItem throws on quota errors.
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsErr
				return
			}
			err = errors.New("localStorage write failed")
		}
	}()
	text := string(value)
	if store.IsPacked(value) {
		text = packedPrefix + base64.StdEncoding.EncodeToString(value)
	}
	l.storage.Call("setItem", key, text)
	return nil
}

var session *api.Session

func vec(args []js.Value, i int) voxel.Vec3 {
	return voxel.Vec3{X: args[i].Float(), Y: args[i+1].Float(), Z: args[i+2].Float()}
}

func cubeValue(c voxel.Cube) js.Value {
	return js.ValueOf(map[string]any{
		"x":     c.Position.X,
		"y":     c.Position.Y,
		"z":     c.Position.Z,
		"color": string(c.Color),
	})
}

func result(c voxel.Cube, err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"ok": false, "reason": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true, "cube": cubeValue(c)})
}

func place(this js.Value, args []js.Value) any {
	if len(args) < 6 {
		return js.ValueOf("missing anchor or normal")
	}
	return result(session.Place(vec(args, 0), vec(args, 3)))
}

func remove(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf("missing position")
	}
	return result(session.Remove(vec(args, 0)))
}

func preview(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf(false)
	}
	return js.ValueOf(session.IsValidPlacement(vec(args, 0)))
}

func setColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing color")
	}
	c := voxel.Color(args[0].String())
	if _, err := voxel.ParseHexColor(c); err != nil {
		return js.ValueOf(err.Error())
	}
	session.SetCurrentColor(c)
	return js.Undefined()
}

func clearAll(this js.Value, args []js.Value) any {
	session.Clear()
	return js.Undefined()
}

func cubes(this js.Value, args []js.Value) any {
	snap := session.Snapshot()
	arr := js.Global().Get("Array").New(len(snap))
	for i, c := range snap {
		arr.SetIndex(i, cubeValue(c))
	}
	return arr
}

// bounds returns [minX, minY, minZ, maxX, maxY, maxZ] for camera framing.
func bounds(this js.Value, args []js.Value) any {
	lo, hi := session.Bounds()
	return js.ValueOf([]any{lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z})
}

func exportSTL(this js.Value, args []js.Value) any {
	data, name := session.ExportSTL(time.Now())
	deliverDocument(data, name, export.ContentType)
	return js.Undefined()
}

func exportGLB(this js.Value, args []js.Value) any {
	data, name, err := session.ExportGLB(time.Now())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	deliverDocument(data, name, "model/gltf-binary")
	return js.Undefined()
}

// deliverDocument hands data to the browser as a file download.
func deliverDocument(data []byte, filename, contentType string) {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	blob := js.Global().Get("Blob").New(
		js.Global().Get("Array").New(arr),
		js.ValueOf(map[string]any{"type": contentType}),
	)
	url := js.Global().Get("URL").Call("createObjectURL", blob)
	doc := js.Global().Get("document")
	link := doc.Call("createElement", "a")
	link.Set("href", url)
	link.Set("download", filename)
	doc.Get("body").Call("appendChild", link)
	link.Call("click")
	doc.Get("body").Call("removeChild", link)
	js.Global().Get("URL").Call("revokeObjectURL", url)
}

func main() {
	cfg := config.Default()
	kv := localStorageKV{storage: js.Global().Get("localStorage")}
	session = api.NewSession(context.Background(), cfg.Store(kv, ""), api.WithConfig(cfg))

	palette := js.Global().Get("Array").New(len(cfg.Palette))
	for i, c := range cfg.Palette {
		palette.SetIndex(i, c)
	}

	ns := js.Global().Get("Object").New()
	ns.Set("palette", palette)
	ns.Set("place", js.FuncOf(place))
	ns.Set("remove", js.FuncOf(remove))
	ns.Set("preview", js.FuncOf(preview))
	ns.Set("setColor", js.FuncOf(setColor))
	ns.Set("clearAll", js.FuncOf(clearAll))
	ns.Set("cubes", js.FuncOf(cubes))
	ns.Set("bounds", js.FuncOf(bounds))
	ns.Set("exportSTL", js.FuncOf(exportSTL))
	ns.Set("exportGLB", js.FuncOf(exportGLB))
	js.Global().Set("cubeforge", ns)

	// Hosts re-render from cubes() when onchange is set.
	session.Subscribe(func(e voxel.Event) {
		if fn := ns.Get("onchange"); fn.Type() == js.TypeFunction {
			fn.Invoke(e.Kind.String(), e.Count)
		}
	})
	select {}
}

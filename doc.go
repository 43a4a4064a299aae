// Package rubeview is an interactive viewer for 2D physics scenes exported
// from the [RUBE] editor, simulated with the [Chipmunk2D] engine and drawn
// with [Ebitengine].
//
// Scene documents are parsed and turned into engine objects by the
// [github.com/phanxgames/rubeview/rube] package. This package drives the
// result: it fetches scenes, steps the world at a fixed 60 ticks per
// second, renders it with the engine's debug draw, and lets the user drag
// bodies, pan and zoom.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	v := rubeview.NewViewer(rubeview.Config{
//		Source: rubeview.NewFSSource(scenes.FS, "."),
//		Scenes: scenes.Names(),
//	})
//	rubeview.Run(v, rubeview.RunConfig{Title: "rubeview", Width: 1280, Height: 720})
//
// [Viewer] implements [ebiten.Game], so it can also be handed to
// ebiten.RunGame directly.
//
// # Controls
//
//   - left drag: grab a dynamic body
//   - space + drag: pan
//   - wheel: pan; ctrl + wheel: zoom about the cursor
//   - [ and ] (or PageUp and PageDown): previous and next scene
//   - R: reset the view; F: FPS overlay; H: hide the panel
//
// # Scene sources
//
// [HTTPSource] fetches <base>/scenes/<name>.json, which is how the web build
// finds scenes served next to it. [FSSource] reads an [io/fs.FS], such as the
// embedded bundle in the scenes package. [SceneServer] serves a scene
// directory over HTTP and pushes change notifications over a websocket;
// [Viewer.Watch] subscribes and reloads the current scene when it changes.
//
// # Scripted runs
//
// [LoadTestScript] parses a JSON script of scene switches, injected clicks,
// drags and wheel scrolls, waits and screenshots. Attach it with
// [Viewer.SetTestRunner]; steps run one per tick once injected input
// drains. Screenshots land in [Viewer.ScreenshotDir].
//
// [RUBE]: https://www.iforce2d.net/rube/
// [Chipmunk2D]: https://github.com/jakecoffman/cp
// [Ebitengine]: https://ebitengine.org
package rubeview

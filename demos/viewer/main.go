// viewer opens RUBE scenes in a window. Without -base it shows the embedded
// scene bundle; with -base it fetches scenes from demos/sceneserver and, with
// -watch, reloads the current scene whenever its file changes on disk.
//
//	go run ./demos/viewer -scene jointTypes
//	go run ./demos/viewer -base http://localhost:8080 -watch
//	go run ./demos/viewer -script smoke.json
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/phanxgames/rubeview"
	"github.com/phanxgames/rubeview/scenes"
)

func main() {
	var (
		scene  = flag.String("scene", "", "scene to open first")
		base   = flag.String("base", "", "scene server base URL (default: embedded scenes)")
		watch  = flag.Bool("watch", false, "reload the current scene when the server reports a change")
		script = flag.String("script", "", "JSON test script to run; the viewer exits when it finishes")
		shots  = flag.String("screenshots", "screenshots", "directory for script screenshots")
		debug  = flag.Bool("debug", false, "print timing stats to stderr every second")
		fps    = flag.Bool("fps", false, "show the FPS overlay")
		width  = flag.Int("width", 1280, "window width")
		height = flag.Int("height", 720, "window height")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *base == "" && runtime.GOOS == "js" {
		*base = rubeview.DefaultBaseURL()
	}

	cfg := rubeview.Config{
		Scene:  *scene,
		Width:  *width,
		Height: *height,
		Debug:  *debug,
	}
	if *base == "" {
		cfg.Source = rubeview.NewFSSource(scenes.FS, ".")
		cfg.Scenes = scenes.Names()
	} else {
		src := rubeview.NewHTTPSource(*base)
		cfg.Source = src
		listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		names, err := src.List(listCtx)
		cancel()
		if err != nil {
			log.Printf("viewer: %v; using the default scene list", err)
		} else if len(names) > 0 {
			cfg.Scenes = names
		}
	}

	v := rubeview.NewViewer(cfg)
	v.ScreenshotDir = *shots

	if *script != "" {
		data, err := os.ReadFile(*script)
		if err != nil {
			log.Fatal(err)
		}
		runner, err := rubeview.LoadTestScript(data)
		if err != nil {
			log.Fatal(err)
		}
		v.SetTestRunner(runner)
	}

	if *watch {
		if *base == "" {
			log.Print("viewer: -watch needs -base; ignoring")
		} else {
			v.Watch(ctx, rubeview.WatchURL(*base))
		}
	}

	if err := rubeview.Run(v, rubeview.RunConfig{
		Title:        "rubeview",
		Width:        *width,
		Height:       *height,
		ShowFPS:      *fps,
		ExitWhenDone: *script != "",
	}); err != nil {
		log.Fatal(err)
	}
}

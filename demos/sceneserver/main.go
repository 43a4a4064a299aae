// sceneserver serves a directory of RUBE scene files to the viewer and
// pushes change notifications over /watch. With -web it also serves a
// directory (typically the wasm build and its index.html) at /.
//
//	go run ./demos/sceneserver -dir scenes -web web
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/phanxgames/rubeview"
)

func main() {
	var (
		addr = flag.String("addr", ":8080", "listen address")
		dir  = flag.String("dir", "scenes", "directory of scene .json files")
		web  = flag.String("web", "", "directory served at / (optional)")
		poll = flag.Duration("poll", rubeview.DefaultPollInterval, "how often to check scene files for changes")
	)
	flag.Parse()

	if info, err := os.Stat(*dir); err != nil || !info.IsDir() {
		log.Fatalf("sceneserver: %s is not a directory", *dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scenes := rubeview.NewSceneServer(*dir)
	scenes.Poll = *poll

	mux := http.NewServeMux()
	mux.Handle("/scenes/", scenes)
	mux.Handle("/watch", scenes)
	if *web != "" {
		mux.Handle("/", http.FileServer(http.Dir(*web)))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := scenes.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("sceneserver: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("sceneserver: serving %s on %s", *dir, *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

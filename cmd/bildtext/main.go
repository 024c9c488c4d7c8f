// bildtext generates AI captions for photographs, enriched with reverse
// geocoded GPS context, and optionally writes them back into image
// metadata or an XMP sidecar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"k8s.io/klog/v2"

	"github.com/fsnotify/fsnotify"
	bildtext "github.com/arireddy/bildtext/pkg/bildtext"
)

var (
	provider  = flag.String("provider", "gemini", "AI provider to use: gemini or openai")
	modelFlag = flag.String("model", "", "model alias, e.g. flash, pro, gpt-4o (default: provider's cheapest)")
	style     = flag.String("style", "descriptive", "caption style: descriptive, social, minimal, artistic, documentary, travel")
	noGPS     = flag.Bool("no-gps", false, "disable GPS extraction and reverse geocoding")
	embed     = flag.Bool("embed", false, "write captions into the image's own metadata")
	sidecar   = flag.Bool("sidecar", false, "write captions to an XMP sidecar next to the image")
	backup    = flag.Bool("backup", false, "copy the original aside before embedding")
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write captions anywhere")
	force     = flag.Bool("force", false, "caption images even when a sidecar already exists")
	watchFlag = flag.Bool("watch", false, "watch directory arguments and caption images as they appear")
)

// processor holds the per-run components the file loop needs.
type processor struct {
	cfg      *bildtext.Config
	gen      *bildtext.Generator
	geocoder *bildtext.Geocoder
	embedder *bildtext.Embedder
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Exitf("no images provided. Usage: %s [flags] <image or dir> ...", os.Args[0])
	}

	ctx := context.Background()

	cfg := &bildtext.Config{
		Provider: *provider,
		Model:    *modelFlag,
		Style:    *style,
		NoGPS:    *noGPS,
		Embed:    *embed,
		Sidecar:  *sidecar,
		Backup:   *backup,
		DryRun:   *dryRun,
		Force:    *force,
	}

	m, err := bildtext.ModelFor(cfg.Provider, cfg.Model)
	if err != nil {
		klog.Exitf("model: %v", err)
	}

	captioner, err := bildtext.NewCaptioner(ctx, cfg.Provider, m)
	if err != nil {
		klog.Exitf("captioner: %v", err)
	}
	klog.Infof("using %s model %s (%s, ~$%.3f/image)", captioner.Name(), m.ID, m.Description, m.Cost)

	p := &processor{
		cfg: cfg,
		gen: &bildtext.Generator{Captioner: captioner, Style: bildtext.StyleFor(cfg.Style)},
	}

	if !cfg.NoGPS {
		p.geocoder = bildtext.NewGeocoder()
	}

	if cfg.Embed && !cfg.DryRun {
		e, err := bildtext.NewEmbedder(cfg.Backup)
		if err != nil {
			klog.Exitf("embedder: %v", err)
		}
		defer func() {
			if err := e.Close(); err != nil {
				klog.Errorf("failed to close exiftool: %v", err)
			}
		}()
		p.embedder = e
	}

	paths, err := bildtext.FindImages(flag.Args())
	if err != nil {
		klog.Exitf("find: %v", err)
	}
	klog.Infof("processing %d images", len(paths))

	for _, path := range paths {
		p.process(ctx, path)
	}

	if *watchFlag {
		if err := p.watch(ctx, flag.Args()); err != nil {
			klog.Exitf("watch: %v", err)
		}
	}
}

// process runs the full pipeline for one image. Failures are reported per
// file; the batch continues.
func (p *processor) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("File not found: %s\n", path)
		return
	}

	name := filepath.Base(path)

	if p.cfg.Sidecar && !p.cfg.Force {
		if _, err := os.Stat(bildtext.SidecarPath(path)); err == nil {
			klog.Infof("%s already has a sidecar, skipping", path)
			return
		}
	}

	// GPS and geocoding are best-effort: any failure just means no
	// location context.
	locationContext := ""
	if p.geocoder != nil {
		if gps := bildtext.ExtractGPS(path); gps != nil {
			klog.V(1).Infof("%s is at %.4f, %.4f", path, gps.Latitude, gps.Longitude)
			if loc := p.geocoder.Reverse(ctx, gps.Latitude, gps.Longitude, bildtext.DefaultRetries); loc != nil {
				locationContext = "Location: " + loc.Formatted
			}
		}
	}

	caption, err := p.gen.Generate(ctx, path, locationContext)
	if err != nil {
		fmt.Printf("✗ %s: %v\n", name, err)
		return
	}

	fmt.Printf("✓ %s: %s\n", name, truncate(caption, 50))

	if p.cfg.DryRun {
		return
	}

	if p.cfg.Sidecar {
		if err := bildtext.WriteSidecar(path, caption); err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			return
		}
	}

	if p.embedder != nil {
		if err := p.embedder.Embed(path, caption); err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
		}
	}
}

// watchSettle is how long a file's events must quiesce before it is
// captioned, so images still being copied in are not processed
// half-written.
var watchSettle = 2 * time.Second

// debouncer delays per-path work until events for that path stop arriving.
type debouncer struct {
	mu      sync.Mutex
	settle  time.Duration
	pending map[string]*time.Timer
}

func newDebouncer(settle time.Duration) *debouncer {
	return &debouncer{settle: settle, pending: map[string]*time.Timer{}}
}

// bump schedules fn for path after the settle delay, restarting the clock
// if an earlier event for the same path is still pending.
func (d *debouncer) bump(path string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok {
		t.Stop()
	}

	d.pending[path] = time.AfterFunc(d.settle, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()
		fn()
	})
}

// watch captions images as they land in the watched directories.
func (p *processor) watch(ctx context.Context, args []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	deb := newDebouncer(watchSettle)

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				klog.V(1).Infof("event: %v", event)
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
					if bildtext.IsImage(event.Name) {
						path := event.Name
						deb.bump(path, func() {
							p.process(ctx, path)
						})
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				klog.Errorf("watch error: %v", err)
			}
		}
	}()

	watched := 0
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil || !fi.IsDir() {
			continue
		}
		if err := w.Add(arg); err != nil {
			return fmt.Errorf("add %q: %w", arg, err)
		}
		watched++
	}

	if watched == 0 {
		return fmt.Errorf("no directories to watch")
	}

	klog.Infof("watching %d dirs ...", watched)
	<-make(chan struct{})
	return nil
}

// truncate shortens s to n characters for the terminal preview line,
// never splitting a multibyte rune.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}

package main

import (
	"flag"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/pack"
	"github.com/mogaika/anim_inspector/skelmesh"
	"github.com/mogaika/anim_inspector/utils"
	"github.com/mogaika/anim_inspector/utils/gltfutils"
	"github.com/mogaika/anim_inspector/web"
)

type playOptions struct {
	anim    string
	loop    bool
	tween   float64
	ticks   int
	dt      float64
	lod     int
	gltf    string
	fbx     string
	dumpSeq string
	dump    bool
}

func play(a *pack.Asset, o *playOptions, cfg *config.Config, l *utils.Logger) error {
	inst, decodeErrs, err := a.NewInstance(cfg, l)
	if err != nil {
		return err
	}
	for _, err := range decodeErrs {
		log.Printf("Decode error: %v", err)
	}

	if o.anim != "" {
		switch i := inst.(type) {
		case *skelmesh.SkelMeshInstance:
			if o.loop {
				i.LoopAnim(o.anim, 1, float32(o.tween), 0)
			} else {
				i.PlayAnim(o.anim, 1, float32(o.tween), 0)
			}
		case *skelmesh.VertMeshInstance:
			if o.loop {
				i.LoopAnim(o.anim, 1)
			} else {
				i.PlayAnim(o.anim, 1)
			}
		default:
			return errors.Errorf("%v mesh %q cannot play animations", a.Kind, a.Name)
		}
	}
	for t := 0; t < o.ticks; t++ {
		inst.UpdateAnimation(float32(o.dt))
	}
	if sm, ok := inst.(*skelmesh.SkelMeshInstance); ok {
		for _, ci := range sm.ChannelInfos() {
			log.Printf("channel %d %s %q frame %.2f/%d", ci.Index, ci.State, ci.Anim, ci.Frame, ci.NumFrames)
		}
	}

	if o.dump {
		if err := pack.WriteSummary(os.Stdout, a); err != nil {
			return err
		}
	}
	if o.dumpSeq != "" {
		if err := pack.DumpSequence(os.Stdout, a, o.dumpSeq); err != nil {
			return err
		}
	}

	if o.gltf != "" {
		doc, err := skelmesh.ExportGLTF(inst, a.Name, o.lod)
		if err != nil {
			return errors.Wrapf(err, "Failed to export gltf")
		}
		if err := writeFile(o.gltf, func(f *os.File) error { return gltfutils.ExportBinary(f, doc) }); err != nil {
			return err
		}
		log.Printf("Written %q", o.gltf)
	}
	if o.fbx != "" {
		fb, err := skelmesh.ExportFbx(inst, a.Name, o.lod)
		if err != nil {
			return errors.Wrapf(err, "Failed to export fbx")
		}
		if err := writeFile(o.fbx, func(f *os.File) error { return fb.Write(f) }); err != nil {
			return err
		}
		log.Printf("Written %q", o.fbx)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "Failed to write %q", path)
	}
	return f.Close()
}

func main() {
	var configPath, assetPath, addr string
	var check bool
	var o playOptions
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&assetPath, "asset", "", "Path to asset description, or directory with -check")
	flag.BoolVar(&check, "check", false, "Decode every sequence and report errors")
	flag.StringVar(&o.anim, "play", "", "Animation to play on channel 0")
	flag.BoolVar(&o.loop, "loop", false, "Loop the -play animation")
	flag.Float64Var(&o.tween, "tween", 0, "Tween time in seconds for -play")
	flag.IntVar(&o.ticks, "ticks", 0, "Number of updates to run")
	flag.Float64Var(&o.dt, "dt", 1.0/30, "Seconds per update")
	flag.IntVar(&o.lod, "lod", 0, "Lod to skin for export")
	flag.StringVar(&o.gltf, "export-gltf", "", "Write current pose as binary gltf")
	flag.StringVar(&o.fbx, "export-fbx", "", "Write current pose as fbx")
	flag.BoolVar(&o.dump, "dump", false, "Print asset summary as yaml")
	flag.StringVar(&o.dumpSeq, "dump-seq", "", "Print decoded tracks of a sequence")
	flag.StringVar(&addr, "i", "", "Address of server")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath, utils.NewTextLogger(os.Stderr, cfg.Level()).FieldLogger); err != nil {
			log.Fatal(err)
		}
	}
	l := utils.NewTextLogger(os.Stderr, cfg.Level())

	if addr != "" {
		if err := web.StartServer(addr, cfg, l); err != nil {
			log.Fatal(err)
		}
		return
	}

	if assetPath == "" {
		flag.PrintDefaults()
		return
	}

	if check {
		if failed := parseCheck(assetPath, cfg, l); failed != 0 {
			log.Printf("%d failures", failed)
			os.Exit(1)
		}
		return
	}

	a, err := pack.Open(assetPath, cfg, l)
	if err != nil {
		log.Fatal(err)
	}
	if err := play(a, &o, cfg, l); err != nil {
		log.Fatal(err)
	}
}

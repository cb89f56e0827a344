package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ovaskain/ostinato"
	"github.com/ovaskain/ostinato/gomidi"
	"github.com/ovaskain/ostinato/grammar"
	"github.com/ovaskain/ostinato/oto"
	"github.com/ovaskain/ostinato/player"
	"github.com/ovaskain/ostinato/version"
	"github.com/ovaskain/ostinato/vis"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original grammar file is.")
	perfFile := flag.String("perf", "", "Performance .yml file: tempo, time signature, rewrite steps, looping, instrument mapping.")
	steps := flag.Int("n", -1, "Number of rewrite steps; overrides the performance file.")
	seed := flag.Uint64("seed", 0, "Seed for random production selection; 0 picks the first matching production deterministically.")
	play := flag.Bool("p", false, "Play the derived compositions through the audio device (default behaviour when no other output is defined).")
	midiOut := flag.Bool("m", false, "Play the derived compositions through a MIDI output port instead of the audio device.")
	midiPort := flag.Int("port", 0, "MIDI output port index to use with -m.")
	rawOut := flag.Bool("r", false, "Output the rendered composition as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered composition as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	pngOut := flag.Bool("png", false, "Output a piano roll .png of the composition.")
	ascii := flag.Bool("a", false, "Print an ASCII rendering of the composition to standard output.")
	columns := flag.Int("cols", 64, "Column count for the ASCII rendering.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut && !*pngOut && !*ascii && !*midiOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	perf := ostinato.DefaultPerformance()
	if *perfFile != "" {
		data, err := os.ReadFile(*perfFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read performance file %v: %v\n", *perfFile, err)
			os.Exit(1)
		}
		perf, err = ostinato.ParsePerformance(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not parse performance file %v: %v\n", *perfFile, err)
			os.Exit(1)
		}
	}
	if *steps >= 0 {
		perf.Steps = *steps
	}
	if *seed != 0 {
		perf.Seed = *seed
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			dir, name := filepath.Split(filename)
			if *directory != "" {
				dir = *directory
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if dir != "" {
				if err := os.MkdirAll(dir, os.ModePerm); err != nil {
					return fmt.Errorf("could not create output directory %v: %v", dir, err)
				}
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		g, err := grammar.Parse(string(inputBytes))
		if err != nil {
			return fmt.Errorf("could not parse grammar: %v", err)
		}
		var rng *rand.Rand
		if perf.Seed != 0 {
			rng = rand.New(rand.NewPCG(perf.Seed, perf.Seed))
		}
		derived := g.Derive(rng, perf.Steps)
		comp, err := derived.Compose(perf.TimeSignature, "")
		if err != nil {
			return fmt.Errorf("could not compose: %v", err)
		}
		if *ascii {
			fmt.Print(vis.ASCII(&comp, *columns))
		}
		if *pngOut {
			var buf bytes.Buffer
			if err := vis.Roll(&comp, 1024, 512).EncodePNG(&buf); err != nil {
				return fmt.Errorf("could not encode piano roll: %v", err)
			}
			if err := output(".png", buf.Bytes()); err != nil {
				return fmt.Errorf("error outputting .png file: %v", err)
			}
		}
		if *rawOut || *wavOut {
			buffer := comp.Render(perf.BPM)
			if *rawOut {
				raw, err := ostinato.Raw(buffer, *pcm)
				if err != nil {
					return fmt.Errorf("could not generate .raw file: %v", err)
				}
				if err := output(".raw", raw); err != nil {
					return fmt.Errorf("error outputting .raw file: %v", err)
				}
			}
			if *wavOut {
				wav, err := ostinato.Wav(buffer, *pcm)
				if err != nil {
					return fmt.Errorf("could not generate .wav file: %v", err)
				}
				if err := output(".wav", wav); err != nil {
					return fmt.Errorf("error outputting .wav file: %v", err)
				}
			}
		}
		if *play || *midiOut {
			var sink ostinato.Sink
			if *midiOut {
				sink, err = gomidi.NewSink(perf, *midiPort)
			} else {
				sink, err = oto.NewSink()
			}
			if err != nil {
				return fmt.Errorf("could not open sink: %v", err)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			sched := player.New(perf, &comp)
			err = player.Run(ctx, sched, sink, time.Duration(perf.PollMillis)*time.Millisecond)
			if closeErr := sink.Close(); err == nil {
				err = closeErr
			}
			if err != nil && err != context.Canceled {
				return fmt.Errorf("playback failed: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Ostinato command line utility for playing grammar files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}

package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/polysynth"
	"github.com/vsariola/polysynth/oto"
	"github.com/vsariola/polysynth/version"
)

const defaultReport = `{{ .Name }}: {{ .Duration }}, {{ .Options.Polyphony }} voices, {{ .Options.VoiceStealing | toString | title }} stealing, peak {{ printf "%.1f" .PeakDB }} dB
{{- if .Silent }} (silent){{ end }}
`

// report is the data given to the -report template.
type report struct {
	Name     string
	Frames   int
	Duration time.Duration
	Options  polysynth.Options
	Events   int
	Peak     float32
	PeakDB   float64
	Silent   bool
}

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the current working directory.")
	play := flag.Bool("p", false, "Play the input scores (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered score as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered score as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	reportTmpl := flag.String("report", "", "Print a report of each rendered score using this text/template (sprig functions available). Use \"default\" for a one-line summary.")
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
	if !*rawOut && !*wavOut && *reportTmpl == "" {
		*play = true
	}
	var tmpl *template.Template
	if *reportTmpl != "" {
		text := *reportTmpl
		if text == "default" {
			text = defaultReport
		}
		var err error
		tmpl, err = template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not parse the report template: %v\n", err)
			os.Exit(1)
		}
	}
	var audioContext *oto.Context
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				_, err := os.Stdout.Write(contents)
				return err
			}
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			_, name := filepath.Split(filename)
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		score, err := parseScore(inputBytes)
		if err != nil {
			return fmt.Errorf("the score could not be parsed: %v", err)
		}
		buffer, ctx, err := score.Render()
		if err != nil {
			return fmt.Errorf("rendering failed: %v", err)
		}
		if tmpl != nil {
			peak := ctx.Peak()
			r := report{
				Name:     filename,
				Frames:   len(buffer),
				Duration: polysynth.FrameTime(int64(len(buffer)), score.SampleRate),
				Options:  score.Options,
				Events:   len(score.Events),
				Peak:     peak,
				PeakDB:   20 * math.Log10(float64(peak)),
				Silent:   buffer.IsSilent(),
			}
			if err := tmpl.Execute(os.Stdout, r); err != nil {
				return fmt.Errorf("could not execute the report template: %v", err)
			}
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(score.SampleRate, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			if audioContext == nil {
				audioContext, err = oto.NewContext(score.SampleRate)
				if err != nil {
					return fmt.Errorf("could not acquire oto audio context: %v", err)
				}
			}
			playback := audioContext.Play(buffer)
			playback.Wait()
			if err := playback.Close(); err != nil {
				return err
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			var files []string
			for _, pattern := range []string{"*.yml", "*.yaml", "*.json"} {
				matches, err := filepath.Glob(filepath.Join(param, pattern))
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not glob the path %v for %v files: %v\n", param, pattern, err)
					retval = 1
					continue
				}
				files = append(files, matches...)
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "polysynth-play renders and plays .yml/.json note scores on a polyphonic synth.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}

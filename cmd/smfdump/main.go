package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/obiwanjacobi/midi.net-sub001/midi"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [OPTION] SMF_FILE\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the tracks and events of SMF_FILE.\n\n")
		flag.PrintDefaults()
		os.Exit(0)
	}
}

var (
	hflag = flag.Bool("h", false, "show this message")
	vflag = flag.Bool("v", false, "log decoder diagnostics")
	mflag = flag.Bool("m", false, "print all tracks merged in time order")
	cflag = flag.String("c", "", "code page of meta text (latin1, cp1252)")
	oflag = flag.String("o", "", "re-encode to this file, .rmi gets a RIFF wrapper")
)

func codePage(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(name) {
	case "", "latin1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	case "cp437":
		return charmap.CodePage437, nil
	}
	return nil, fmt.Errorf("unknown code page %q", name)
}

func printEvents(events []midi.TrackEvent) {
	for _, event := range events {
		fmt.Printf("%8d %6d  %s\n", event.AbsoluteTime, event.DeltaTime, event.Message)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 || *hflag {
		flag.Usage()
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *vflag {
		logger.SetLevel(logrus.DebugLevel)
	}
	cm, err := codePage(*cflag)
	if err != nil {
		return err
	}

	fpath := args[0]
	f, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	m, err := midi.ReadMidi(f, midi.WithLogger(logger), midi.WithCharmap(cm))
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", filepath.Base(fpath), humanize.Bytes(uint64(info.Size())))
	if fps, ticks := m.SMPTE(); fps != 0 {
		fmt.Printf("format %d, %d tracks, %d fps at %d ticks per frame\n", m.Format, m.Ntrks, fps, ticks)
	} else {
		fmt.Printf("format %d, %d tracks, %d ticks per quarter note\n", m.Format, m.Ntrks, m.TicksPerQuarterNote())
	}

	if *mflag {
		merged, err := m.MergedEvents()
		if err != nil {
			return err
		}
		fmt.Printf("\nmerged, %s events\n", humanize.Comma(int64(len(merged))))
		printEvents(merged)
	} else {
		for i, track := range m.TrackChunks {
			fmt.Printf("\n[%d] %q, %s events, %s\n", i, track.Name(),
				humanize.Comma(int64(len(track.TrackEvents))), humanize.Bytes(uint64(track.Size)))
			printEvents(track.TrackEvents)
		}
	}

	if *oflag == "" {
		return nil
	}
	dst, err := os.Create(*oflag)
	if err != nil {
		return err
	}
	defer dst.Close()

	var n int64
	if strings.EqualFold(filepath.Ext(*oflag), ".rmi") {
		n, err = m.EncodeRmid(dst)
	} else {
		n, err = m.Encode(dst)
	}
	if err != nil {
		return err
	}
	logger.WithField("size", humanize.Bytes(uint64(n))).Infof("wrote %s", *oflag)
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

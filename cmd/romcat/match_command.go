package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"romcat/internal/analyzer"
	"romcat/internal/catalog"
	"romcat/internal/config"
	"romcat/internal/datfile"
	"romcat/internal/datindex"
	"romcat/internal/services"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		fileFlag   string
		serialFlag string
		crcFlag    string
		sha1Flag   string
		sizeFlag   uint64
		datsFlag   string
	)

	cmd := &cobra.Command{
		Use:   "match <platform>",
		Short: "Match a dump against the catalog or a DAT set",
		Long: `Match resolves a probe against known dumps. The probe comes from --file
(analyzed with the platform's analyzer) or from explicit --serial/--crc/
--size/--sha1 flags. With --dats the probe is matched against the DAT
files in that directory instead of the catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platformID := args[0]
			probe, err := buildProbe(platformID, fileFlag, serialFlag, crcFlag, sha1Flag, sizeFlag)
			if err != nil {
				return err
			}
			if datsFlag != "" {
				return matchAgainstDATs(cmd, datsFlag, probe)
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				return matchAgainstCatalog(cmd, store, probe)
			})
		},
	}

	cmd.Flags().StringVar(&fileFlag, "file", "", "Dump file to analyze")
	cmd.Flags().StringVar(&serialFlag, "serial", "", "Serial to probe")
	cmd.Flags().StringVar(&crcFlag, "crc", "", "CRC32 to probe")
	cmd.Flags().StringVar(&sha1Flag, "sha1", "", "SHA-1 to probe")
	cmd.Flags().Uint64Var(&sizeFlag, "size", 0, "File size for CRC32 confirmation")
	cmd.Flags().StringVar(&datsFlag, "dats", "", "Match against DAT files in this directory")
	return cmd
}

func buildProbe(platformID, file, serial, crc, sha1 string, size uint64) (analyzer.Candidate, error) {
	if file != "" {
		a, err := analyzer.For(platformID)
		if err != nil {
			return analyzer.Candidate{}, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return analyzer.Candidate{}, services.Wrap(services.ErrValidation, "cli", "match", "read "+file, err)
		}
		return a.Analyze(file, data)
	}

	probe := analyzer.Candidate{
		Serial: serial,
		CRC32:  crc,
		SHA1:   sha1,
		Size:   size,
	}
	if probe.Serial == "" && probe.CRC32 == "" && probe.SHA1 == "" {
		return probe, services.Wrap(services.ErrValidation, "cli", "match",
			"provide --file, --serial, or --crc/--sha1", nil)
	}
	return probe, nil
}

func matchAgainstCatalog(cmd *cobra.Command, store *catalog.Store, probe analyzer.Candidate) error {
	ctx := cmd.Context()

	var found []catalog.Media
	if probe.CRC32 != "" || probe.SHA1 != "" {
		media, err := store.LookupMediaByHash(ctx, int64(probe.Size), probe.CRC32, probe.SHA1)
		if err != nil {
			return err
		}
		found = media
	}
	if len(found) == 0 && probe.Serial != "" {
		media, err := store.LookupMediaBySerial(ctx, datindex.NormalizeSerial(probe.Serial))
		if err != nil {
			return err
		}
		found = media
	}

	if len(found) == 0 {
		cmd.Println("no match")
		return nil
	}
	rows := make([][]string, 0, len(found))
	for _, m := range found {
		rows = append(rows, []string{m.DATName, m.MediaSerial, m.CRC32, strconv.FormatInt(m.FileSize, 10), m.ReleaseID})
	}
	cmd.Println(renderTable([]string{"DAT Name", "Serial", "CRC32", "Size", "Release"}, rows))
	return nil
}

func matchAgainstDATs(cmd *cobra.Command, dir string, probe analyzer.Candidate) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return services.Wrap(services.ErrValidation, "cli", "match", "read "+dir, err)
	}

	var files []*datfile.File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(dir + string(os.PathSeparator) + entry.Name())
		if err != nil {
			return services.Wrap(services.ErrValidation, "cli", "match", "read "+entry.Name(), err)
		}
		file, err := datfile.Parse(data)
		if err != nil {
			continue
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return services.Wrap(services.ErrValidation, "cli", "match", "no parseable dat files in "+dir, nil)
	}

	index := datindex.Build(files...)
	if probe.CRC32 != "" || probe.SHA1 != "" {
		if entry, ok := index.MatchByHash(probe.Size, probe.CRC32, probe.SHA1); ok {
			cmd.Printf("matched by hash: %s\n", entry.Game.Name)
			return nil
		}
	}
	if probe.Serial != "" {
		result := index.MatchBySerial(probe.Serial, probe.GameCodeHint)
		switch result.Outcome {
		case datindex.Matched:
			cmd.Printf("matched by serial: %s\n", result.Entry.Game.Name)
			return nil
		case datindex.Ambiguous:
			cmd.Println("ambiguous serial; candidates:")
			for _, name := range result.Candidates {
				cmd.Println(fmt.Sprintf("  %s", name))
			}
			return nil
		}
	}
	cmd.Println("no match")
	return nil
}

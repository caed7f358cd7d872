package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/k-donn/go-apportion/manifest"
	"github.com/urfave/cli/v2"
)

var manifestCmd = cli.Command{
	Name: "manifest",
	Subcommands: []*cli.Command{
		&manifestGenCmd,
		&manifestCheckCmd,
	},
}

var manifestGenCmd = cli.Command{
	Name:  "gen",
	Usage: "generates an apportionment manifest",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "assembly",
			Usage: "name of the assembly being seated",
		},
		&cli.Uint64Flag{
			Name:  "house-size",
			Usage: "total number of seats in the assembly",
		},
		&cli.StringFlag{
			Name:  "dataset",
			Usage: "path to the census CSV file",
		},
	},

	Action: func(c *cli.Context) error {
		path := c.String("manifest")
		m := manifest.DefaultManifest()
		if c.IsSet("assembly") {
			m.Assembly = c.String("assembly")
		}
		if c.IsSet("house-size") {
			m.HouseSize = c.Uint64("house-size")
		}
		if c.IsSet("dataset") {
			m.Dataset = c.String("dataset")
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			return fmt.Errorf("opening manifest file for writing: %w", err)
		}
		err = json.NewEncoder(f).Encode(m)
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		err = f.Close()
		if err != nil {
			return fmt.Errorf("closing file: %w", err)
		}

		return nil
	},
}

var manifestCheckCmd = cli.Command{
	Name:  "check",
	Usage: "validates a manifest and prints its version",

	Action: func(c *cli.Context) error {
		m, err := getManifest(c)
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("validating manifest: %w", err)
		}
		version, err := m.Version()
		if err != nil {
			return fmt.Errorf("versioning manifest: %w", err)
		}
		_, _ = fmt.Fprintf(c.App.Writer, "Manifest %s version: %s\n", m.Assembly, version)
		return nil
	},
}

// getManifest loads the manifest named by the --manifest flag, falling back
// to the default manifest when the flag was left unset and no file exists at
// the default path.
func getManifest(c *cli.Context) (*manifest.Manifest, error) {
	path := c.String("manifest")
	m, err := loadManifest(path)
	if err == nil {
		return m, nil
	}
	if !c.IsSet("manifest") && errors.Is(err, fs.ErrNotExist) {
		def := manifest.DefaultManifest()
		return &def, nil
	}
	return nil, err
}

func loadManifest(path string) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s to load manifest: %w", path, err)
	}
	defer f.Close()
	var m manifest.Manifest

	err = m.Unmarshal(f)
	return &m, err
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/config"
)

func TestLoad(t *testing.T) {
	tests := map[string]struct {
		file    string
		expCfg  *config.Config
		expErr  bool
		missing bool
	}{
		"A missing file should apply the defaults.": {
			missing: true,
			expCfg: &config.Config{
				PollInterval: 3 * time.Second,
				PerPage:      20,
				MaxWorkers:   3,
			},
		},

		"A valid file should be loaded with defaults for the omitted values.": {
			file: `
server_url: http://worker.internal:5000
poll_interval: 10s
keywords: [graphene, perovskite]
`,
			expCfg: &config.Config{
				ServerURL:    "http://worker.internal:5000",
				PollInterval: 10 * time.Second,
				PerPage:      20,
				MaxWorkers:   3,
				Keywords:     []string{"graphene", "perovskite"},
			},
		},

		"An invalid per page should fail.": {
			file:   `per_page: -1`,
			expErr: true,
		},

		"A broken file should fail.": {
			file:   `{[`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			path := filepath.Join(t.TempDir(), "scraperctl.yml")
			if !test.missing {
				require.NoError(os.WriteFile(path, []byte(test.file), 0o600))
			}

			cfg, err := config.Load(path)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				assert.Equal(test.expCfg, cfg)
			}
		})
	}
}

package listfiles_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraperctl/internal/app/listfiles"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/remote/remotemock"
)

func TestServiceRun(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		req      listfiles.Request
		mock     func(m *remotemock.MockClient)
		expFiles []string
		expErr   bool
	}{
		"Files should be listed newest first.": {
			req: listfiles.Request{Category: model.FileCategoryDownloads},
			mock: func(m *remotemock.MockClient) {
				m.On("ListFiles", mock.Anything, model.FileCategoryDownloads).Once().Return([]model.ResourceFile{
					{Name: "old.pdf", Modified: t0},
					{Name: "new.pdf", Modified: t0.Add(time.Hour)},
					{Name: "also-new.pdf", Modified: t0.Add(time.Hour)},
				}, nil)
			},
			expFiles: []string{"also-new.pdf", "new.pdf", "old.pdf"},
		},

		"A remote failure should fail the listing.": {
			req: listfiles.Request{Category: model.FileCategoryLogs},
			mock: func(m *remotemock.MockClient) {
				m.On("ListFiles", mock.Anything, model.FileCategoryLogs).Once().Return(nil, fmt.Errorf("down: %w", model.ErrTransient))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mc := &remotemock.MockClient{}
			test.mock(mc)

			svc, err := listfiles.NewService(listfiles.ServiceConfig{Client: mc})
			require.NoError(err)

			files, err := svc.Run(context.TODO(), test.req)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				names := make([]string, 0, len(files))
				for _, f := range files {
					names = append(names, f.Name)
				}
				assert.Equal(test.expFiles, names)
			}
			mc.AssertExpectations(t)
		})
	}
}

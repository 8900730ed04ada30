package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deixis/crashsym/internal/logger"
	"github.com/deixis/crashsym/internal/runner"
	"github.com/deixis/crashsym/internal/workflow/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func writeLib(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("not really a library"), 0o644))
	return p
}

func TestRun_ConfigErrorsBeforeAnyWork(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing app", Request{Files: []string{"/does/not/exist.so"}}},
		{"bad generator", Request{App: "app", Generator: "gdb", Files: []string{"/does/not/exist.so"}}},
		{"no files", Request{App: "app"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No expectations: neither the resolver nor the runner may be called.
			e := &Engine{
				Tools:  mocks.NewMockToolResolver(ctrl),
				Runner: mocks.NewMockCommandRunner(ctrl),
				Log:    logger.NewPlain(&bytes.Buffer{}, false),
			}
			rr, err := e.Run(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Nil(t, rr)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := &Engine{
		Tools:  mocks.NewMockToolResolver(ctrl),
		Runner: mocks.NewMockCommandRunner(ctrl),
		Log:    logger.NewPlain(&bytes.Buffer{}, false),
	}
	_, err := e.Run(context.Background(), Request{App: "app", Files: []string{filepath.Join(t.TempDir(), "nope.so")}, CacheRoot: t.TempDir()})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_SharesCachePath(t *testing.T) {
	ctrl := gomock.NewController(t)
	tools := mocks.NewMockToolResolver(ctrl)
	r := mocks.NewMockCommandRunner(ctrl)
	var buf bytes.Buffer
	e := &Engine{Tools: tools, Runner: r, Log: logger.NewPlain(&buf, false)}

	dir := t.TempDir()
	a := writeLib(t, dir, "liba.so")
	b := writeLib(t, dir, "libb.so")
	root := t.TempDir()

	tools.EXPECT().Resolve(gomock.Any()).Return("/jar/buildtools.jar", nil)

	var calls [][]string
	r.EXPECT().Run(gomock.Any(), gomock.Any(), false).DoAndReturn(
		func(_ context.Context, argv []string, _ bool) (*runner.Result, error) {
			calls = append(calls, argv)
			return ok(""), nil
		}).Times(3)

	rr, err := e.Run(context.Background(), Request{App: "1:2:android:3", Files: []string{a, b}, CacheRoot: root})
	require.NoError(t, err)
	require.Len(t, calls, 3)

	cacheArg := "-symbolFileCacheDir=" + rr.CachePath
	for i, argv := range calls {
		assert.Contains(t, argv, cacheArg, "call %d", i)
		assert.Contains(t, argv, "/jar/buildtools.jar", "call %d", i)
	}
	assert.Contains(t, calls[0], "-unstrippedLibrary="+a)
	assert.Contains(t, calls[1], "-unstrippedLibrary="+b)
	assert.Contains(t, calls[2], "-googleAppId=1:2:android:3")
	assert.True(t, strings.HasPrefix(rr.CachePath, root))
	assert.True(t, strings.HasSuffix(rr.CachePath, filepath.Join("nativeSymbols", "1-2-android-3", "breakpad")))

	// Plain files are not ELF; the run warns but carries on.
	assert.Contains(t, buf.String(), "is not an ELF library")
}

func TestRun_ResolverError(t *testing.T) {
	ctrl := gomock.NewController(t)
	tools := mocks.NewMockToolResolver(ctrl)
	e := &Engine{
		Tools:  tools,
		Runner: mocks.NewMockCommandRunner(ctrl),
		Log:    logger.NewPlain(&bytes.Buffer{}, false),
	}
	boom := errors.New("download failed")
	tools.EXPECT().Resolve(gomock.Any()).Return("", boom)

	lib := writeLib(t, t.TempDir(), "lib.so")
	_, err := e.Run(context.Background(), Request{App: "app", Files: []string{lib}, CacheRoot: t.TempDir()})
	assert.ErrorIs(t, err, boom)
}

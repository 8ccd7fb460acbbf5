package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// 最小的PNG文件头,足够被识别为image/png
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

func newStore(t *testing.T, maxSize int64) (*LocalCoverStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "covers")
	s, err := NewLocalCoverStore(config.UploadConfig{Dir: dir, URLPrefix: "/uploads/covers/", MaxSize: maxSize})
	require.NoError(t, err)
	return s, dir
}

func TestLocalCoverStore_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t, 1<<20)

	url, err := s.Save(ctx, "cover.PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/covers/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, filepath.Base(url))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(ctx, url), "重复删除不报错")
	assert.NoError(t, s.Remove(ctx, ""), "没有封面")
}

func TestLocalCoverStore_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("扩展名不允许", func(t *testing.T) {
		s, _ := newStore(t, 1<<20)
		_, err := s.Save(ctx, "cover.pdf", bytes.NewReader(pngHeader))
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("内容与扩展名不符", func(t *testing.T) {
		s, _ := newStore(t, 1<<20)
		_, err := s.Save(ctx, "cover.png", strings.NewReader("#!/bin/sh\necho hi\n"))
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("超过大小限制", func(t *testing.T) {
		s, dir := newStore(t, 16)
		_, err := s.Save(ctx, "cover.png", bytes.NewReader(pngHeader))
		assert.ErrorIs(t, err, ErrFileTooLarge)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "失败时不落盘")
	})
}

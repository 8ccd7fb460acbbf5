package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 允许的封面格式:扩展名 -> 内容检测得到的MIME
var allowedImages = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var (
	ErrInvalidImage = apperrors.New(apperrors.ErrCodeInvalidFile, "Only image files (jpg, jpeg, png, gif, webp) are allowed")
	ErrFileTooLarge = apperrors.New(apperrors.ErrCodeInvalidFile, "File is too large")
)

// LocalCoverStore 封面存储到本地目录,通过/uploads静态路由访问
// 文件名为<uuid>.<ext>,不使用客户端文件名
type LocalCoverStore struct {
	dir       string
	urlPrefix string
	maxSize   int64
}

// NewLocalCoverStore 创建本地封面存储,目录不存在时自动创建
func NewLocalCoverStore(cfg config.UploadConfig) (*LocalCoverStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &LocalCoverStore{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimRight(cfg.URLPrefix, "/"),
		maxSize:   cfg.MaxSize,
	}, nil
}

// MaxSize 单个文件大小上限
func (s *LocalCoverStore) MaxSize() int64 {
	return s.maxSize
}

// Save 校验并保存封面,返回访问路径(/uploads/covers/<uuid>.<ext>)
// 扩展名与文件内容都必须是允许的图片格式,且二者一致
func (s *LocalCoverStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowedImages[ext]
	if !ok {
		return "", ErrInvalidImage
	}

	// 多读1字节判断是否超限
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "Failed to read upload")
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrFileTooLarge.WithMessagef("File size exceeds %dMB limit", s.maxSize>>20)
	}
	if !mimetype.Detect(data).Is(want) {
		return "", ErrInvalidImage
	}

	name := uuid.NewString() + ext
	if err := writeFile(filepath.Join(s.dir, name), bytes.NewReader(data)); err != nil {
		return "", apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "Failed to save cover image")
	}

	zap.L().Debug("封面已保存", zap.String("file", name), zap.Int("size", len(data)))
	return path.Join(s.urlPrefix, name), nil
}

// Remove 删除封面,文件不存在不报错
func (s *LocalCoverStore) Remove(ctx context.Context, urlPath string) error {
	if urlPath == "" || !strings.HasPrefix(urlPath, s.urlPrefix+"/") {
		return nil
	}
	name := path.Base(urlPath)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "Failed to remove cover image")
	}
	return nil
}

// writeFile 先写临时文件再改名,避免读到半个文件
func writeFile(dst string, r io.Reader) error {
	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

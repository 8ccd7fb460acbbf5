package book

import (
	"context"
	"errors"
	"time"
)

// Service 图书目录领域服务
// 负责图书基本信息的创建、查询与修改;库存变化由inventory.Ledger负责
type Service interface {
	// Create 创建图书,ISBN重复返回冲突错误
	Create(ctx context.Context, title, author, isbn string, publicationYear, quantity int, description string) (*Book, error)

	// Get 查询图书详情
	Get(ctx context.Context, id string) (*Book, error)

	// List 分页搜索
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// UpdateInfo 部分更新基本信息,修改ISBN时预检唯一性
	// 加行锁读取后写回,需在事务中调用
	UpdateInfo(ctx context.Context, id string, patch Patch) (*Book, error)

	// SetCoverImage 更新封面路径,返回旧路径;需在事务中调用
	SetCoverImage(ctx context.Context, id, path string) (string, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, title, author, isbn string, publicationYear, quantity int, description string) (*Book, error) {
	b, err := NewBook(title, author, isbn, publicationYear, quantity, description)
	if err != nil {
		return nil, err
	}

	// 预检ISBN,给出友好提示;并发插入由唯一索引兜底
	if err := s.ensureISBNFree(ctx, isbn, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (s *service) UpdateInfo(ctx context.Context, id string, patch Patch) (*Book, error) {
	// 与库存台账争用同一行锁,写回的version与库存字段不会基于旧快照
	b, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch == (Patch{}) {
		return b, nil
	}

	if patch.ISBN != nil && *patch.ISBN != b.ISBN {
		if err := s.ensureISBNFree(ctx, *patch.ISBN, b.ID); err != nil {
			return nil, err
		}
	}

	if err := b.ApplyPatch(patch, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) SetCoverImage(ctx context.Context, id, path string) (string, error) {
	b, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return "", err
	}

	old := b.CoverImage
	b.CoverImage = path
	b.touch()
	if err := s.repo.Update(ctx, b); err != nil {
		return "", err
	}
	return old, nil
}

func (s *service) ensureISBNFree(ctx context.Context, isbn, excludeID string) error {
	exists, err := s.repo.ExistsByISBN(ctx, isbn, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return DuplicateISBN(isbn)
	}
	return nil
}

// IsNotFound 是否为图书不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

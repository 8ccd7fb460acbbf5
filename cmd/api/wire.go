//go:build wireinject
// +build wireinject

// Wire依赖注入配置,修改后执行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/application/lending"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/storage"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// infrastructureSet 存储、缓存、消息与文件
var infrastructureSet = wire.NewSet(
	providePersistence,
	wire.FieldsOf(new(*Persistence), "Tx", "Books", "Borrows", "Users", "Logs"),
	provideRedis,
	provideBlacklist,
	provideBookCache,
	provideEventPublisher,
	wire.FieldsOf(new(*config.Config), "Upload"),
	storage.NewLocalCoverStore,
	wire.Bind(new(appbook.CoverStore), new(*storage.LocalCoverStore)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	inventory.NewLedger,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewUploadCoverUseCase,
	appbook.NewListInventoryLogsUseCase,
	provideLendingOptions,
	lending.NewBorrowBookUseCase,
	lending.NewReturnBookUseCase,
	lending.NewListBorrowsUseCase,
)

// interfaceSet HTTP层
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewLendingHandler,
	provideHealthChecks,
	handler.NewHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 组装整个应用,cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}

package routes

import (
	adminapi "blocks-cms/internal/api/admin"
	authapi "blocks-cms/internal/api/auth"
	contentapi "blocks-cms/internal/api/content"
	entriesapi "blocks-cms/internal/api/entries"
	systemapi "blocks-cms/internal/api/system"
	usersapi "blocks-cms/internal/api/users"
	"blocks-cms/internal/app/http/middleware"
	"blocks-cms/internal/domain/blocks"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/layouts"
	"blocks-cms/internal/domain/owners"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/system"
	"blocks-cms/internal/domain/usergroups"
	"blocks-cms/internal/domain/versions"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Permission names checked by the editor routes.
const (
	PermEditContent = "content.edit"
	PermPublish     = "entries.publish"
)

// Services is the set of domain services behind the HTTP API.
type Services struct {
	Registry   *registry.Registry
	Blocks     *blocks.Service
	Layouts    *layouts.Service
	Owners     *owners.Service
	Versions   *versions.Service
	System     *system.Service
	UserGroups *usergroups.Service

	db *gorm.DB
}

func NewServices(db *gorm.DB, reg *registry.Registry, defaultLanguage string) (*Services, error) {
	bs := blocks.NewService(db, reg)
	ls := layouts.NewService(db, reg, bs)
	vs, err := versions.NewService(db, reg, bs, ls, defaultLanguage)
	if err != nil {
		return nil, err
	}
	os := owners.NewService(db, reg)
	if err := os.OnDelete(catalog.Entry, vs.DeleteOwner); err != nil {
		return nil, err
	}
	return &Services{
		Registry:   reg,
		Blocks:     bs,
		Layouts:    ls,
		Owners:     os,
		Versions:   vs,
		System:     system.NewService(db, reg),
		UserGroups: usergroups.NewService(db, reg),
		db:         db,
	}, nil
}

func RegisterRoutes(r *gin.Engine, s *Services) {
	content := contentapi.NewHandler(s.db, s.Registry, s.Blocks, s.Layouts, s.Owners)
	entries := entriesapi.NewHandler(s.Versions)
	sys := systemapi.NewHandler(s.Registry, s.System, s.UserGroups)
	auths := authapi.NewHandler(s.Owners)
	me := usersapi.NewHandler(s.Owners, s.UserGroups)
	stats := adminapi.NewHandler(s.db, s.Registry)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/login", auths.Login)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", me.GetCurrentUser)
	auth.POST("/change-password", auths.ChangePassword)
	auth.GET("/models", sys.ListModels)
	auth.GET("/models/:name", sys.GetModel)
	auth.GET("/languages", sys.ListLanguages)
	auth.GET("/info", sys.GetInfo)

	auth.GET("/blocks", content.ListBlocks)
	auth.GET("/blocks/:id", content.GetBlock)
	auth.GET("/owners/:model/:id", content.GetOwner)
	auth.GET("/layouts/:model/:id", content.ListLayout)
	auth.GET("/content/:model/:id", content.ListLanguages)
	auth.GET("/content/:model/:id/:lang", content.GetContent)

	auth.GET("/entries/:id/drafts", entries.ListDrafts)
	auth.GET("/entries/:id/versions", entries.ListVersions)
	auth.GET("/drafts/:draft", entries.GetDraft)
	auth.GET("/versions/:version", entries.GetVersion)

	// Editors
	editors := auth.Group("/")
	editors.Use(middleware.RequirePermission(s.UserGroups, PermEditContent, 1))
	editors.POST("/owners/:model", content.CreateOwner)
	editors.PUT("/owners/:model/:id", content.UpdateOwner)
	editors.DELETE("/owners/:model/:id", content.DeleteOwner)
	editors.PUT("/content/:model/:id/:lang", content.SetContent)
	editors.DELETE("/content/:model/:id/:lang/:block", content.DeleteContent)

	editors.POST("/entries/:id/drafts", entries.CreateDraft)
	editors.POST("/entries/:id/versions/:version/revert", entries.Revert)
	editors.PUT("/drafts/:draft/blocks/:block", entries.EditDraft)
	editors.DELETE("/drafts/:draft", entries.Discard)

	publishers := auth.Group("/")
	publishers.Use(
		middleware.RequirePermission(s.UserGroups, PermPublish, 1),
		middleware.SanitizeAndCleanInputMiddleware(bluemonday.UGCPolicy(), "notes"),
	)
	publishers.POST("/drafts/:draft/publish", entries.Publish)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole("admin"),
		middleware.SanitizeAndCleanInputMiddleware(bluemonday.UGCPolicy(), "instructions"),
	)
	admin.GET("/stats", stats.GetAdminStats)
	admin.PUT("/users/:id/credentials", auths.SetCredentials)
	admin.POST("/blocks", content.CreateBlock)
	admin.DELETE("/blocks/:id", content.DeleteBlock)
	admin.POST("/layouts/:model/:id", content.AssignBlock)
	admin.PUT("/layouts/:model/:id/reorder", content.ReorderLayout)
	admin.DELETE("/layouts/:model/:id/:block", content.UnassignBlock)

	admin.POST("/languages", sys.AddLanguage)
	admin.DELETE("/languages/:code", sys.RemoveLanguage)
	admin.PUT("/info", sys.SetInfo)
	admin.GET("/settings/:category", sys.GetSettings)
	admin.PUT("/settings/:category", sys.PutSettings)
	admin.GET("/license-keys", sys.ListLicenseKeys)
	admin.POST("/license-keys", sys.AddLicenseKey)
	admin.DELETE("/license-keys/:key", sys.RemoveLicenseKey)

	admin.GET("/usergroups/:id/members", sys.ListMembers)
	admin.POST("/usergroups/:id/members", sys.AddMember)
	admin.DELETE("/usergroups/:id/members/:user", sys.RemoveMember)
	admin.GET("/usergroups/:id/permissions", sys.ListPermissions)
	admin.PUT("/usergroups/:id/permissions", sys.SetPermission)
}

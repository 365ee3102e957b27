package ez

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"salesdesk/internal/core/database"
	resp "salesdesk/internal/transport/http/response"
)

// Hook
type CrudHooks[T any] struct {
	ScopeList func(c *gin.Context, q *gorm.DB) *gorm.DB // 自定义筛选
	AfterGet  func(c *gin.Context, m *T)
}

// CrudConfig 只读的“我的数据”接口：按归属字段过滤，写操作走各自的 service
type CrudConfig[T any] struct {
	DB    *gorm.DB
	Group *gin.RouterGroup // 已鉴权分组（能拿 userId）
	Path  string
	New   func() *T

	Hooks CrudHooks[T]

	AllowList bool
	AllowGet  bool

	IDField    string // 默认 "ID"
	OwnerField string // 默认优先 "OwnerID"，其次 "UserID"/"UID"

	// 列表排序，为空则按 ID DESC
	OrderBy string // 例如 "created_at DESC"

	AutoMigrate bool
}

// 反射 & 工具
func (c *CrudConfig[T]) idFieldCandidates() []string {
	if c.IDField != "" {
		return []string{c.IDField, "ID", "Id"}
	}
	return []string{"ID", "Id"}
}

func (c *CrudConfig[T]) ownerFieldCandidates() []string {
	if c.OwnerField != "" {
		return []string{c.OwnerField, "OwnerID", "UserID", "UID"}
	}
	return []string{"OwnerID", "UserID", "UID"}
}

func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for _, cand := range candidates {
		f, ok := t.FieldByName(cand)
		// 未导出字段跳过
		if !ok || f.PkgPath != "" {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func toSnake(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	prevUpper := false
	for i, r := range s {
		if unicode.IsUpper(r) {
			// ID → id，OwnerID → owner_id
			if i > 0 && !prevUpper {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUpper = true
		} else {
			b.WriteRune(r)
			prevUpper = false
		}
	}
	return b.String()
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, resp.Error("Unauthorized"))
}

// Crud 注册列表/详情（无需模型实现任何接口）
func Crud[T any](cfg CrudConfig[T]) {
	if !cfg.AllowGet && !cfg.AllowList {
		cfg.AllowGet, cfg.AllowList = true, true
	}
	if cfg.AutoMigrate {
		_ = cfg.DB.AutoMigrate(cfg.New())
	}

	idFieldNames := cfg.idFieldCandidates()
	ownerFieldNames := cfg.ownerFieldCandidates()

	// List（我的）
	if cfg.AllowList {
		cfg.Group.GET(cfg.Path, func(c *gin.Context) {
			uid := c.GetString("userId")
			if uid == "" {
				unauthorized(c)
				return
			}
			page := atoiDefault(c.Query("page"), 1)
			size := atoiDefault(c.Query("size"), 20)
			if size > 100 {
				size = 20
			}
			offset := (page - 1) * size

			// 用结构体 Where 自动映射列名
			ownerFilter := cfg.New()
			if !writeStringField(ownerFilter, ownerFieldNames, uid) {
				c.JSON(http.StatusInternalServerError, resp.Error("owner field not found"))
				return
			}

			q := cfg.DB.WithContext(c.Request.Context()).Model(cfg.New()).Where(ownerFilter)
			if cfg.Hooks.ScopeList != nil {
				q = cfg.Hooks.ScopeList(c, q)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				c.JSON(http.StatusInternalServerError, resp.Error(err.Error()))
				return
			}

			items := []T{}
			if cfg.OrderBy != "" {
				q = q.Order(cfg.OrderBy)
			} else {
				q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: toSnake(idFieldNames[0])}, Desc: true})
			}
			if err := q.Limit(size).Offset(offset).Find(&items).Error; err != nil {
				c.JSON(http.StatusInternalServerError, resp.Error(err.Error()))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				for i := range items {
					cfg.Hooks.AfterGet(c, &items[i])
				}
			}
			c.JSON(http.StatusOK, gin.H{
				"list": items, "total": total, "page": page, "size": size,
			})
		})
	}

	// Get
	if cfg.AllowGet {
		cfg.Group.GET(cfg.Path+"/:id", func(c *gin.Context) {
			uid := c.GetString("userId")
			if uid == "" {
				unauthorized(c)
				return
			}

			filter := cfg.New()
			_ = writeStringField(filter, idFieldNames, c.Param("id"))
			_ = writeStringField(filter, ownerFieldNames, uid)

			m := cfg.New()
			err := cfg.DB.WithContext(c.Request.Context()).Where(filter).First(m).Error
			if errors.Is(err, gorm.ErrRecordNotFound) || database.IsInvalidText(err) {
				c.JSON(http.StatusNotFound, resp.Error("not found"))
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, resp.Error(err.Error()))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, m)
			}
			c.JSON(http.StatusOK, m)
		})
	}
}

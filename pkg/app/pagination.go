package app

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// 分页默认值，可被配置覆盖
var (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SetPaginationDefaults 设置分页默认值（由配置注入）
func SetPaginationDefaults(pageSize, max int) {
	if pageSize > 0 {
		defaultPageSize = pageSize
	}
	if max > 0 {
		maxPageSize = max
	}
}

// GetPage 从请求中提取页码，非法值回退为 1
func GetPage(c *gin.Context) int {
	page, _ := strconv.Atoi(c.Query("page"))
	if page <= 0 {
		return 1
	}
	return page
}

// GetPageSize 从请求中提取每页数量，并裁剪到配置上限
func GetPageSize(c *gin.Context) int {
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}

// GetPageOffset 计算分页偏移量
func GetPageOffset(page, pageSize int) int {
	if page <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}

// NewPager 组装分页信息
func NewPager(c *gin.Context, totalRows int) *Pager {
	return &Pager{
		Page:      GetPage(c),
		PageSize:  GetPageSize(c),
		TotalRows: totalRows,
	}
}

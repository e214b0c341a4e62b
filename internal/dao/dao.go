// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rubaiyatxeren/note-master-service/internal/model"
	"github.com/rubaiyatxeren/note-master-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Database 数据库连接配置
type Database struct {
	Type         string `yaml:"type"`           // sqlite / mysql / postgres
	Path         string `yaml:"path"`           // sqlite 数据库文件路径
	UserName     string `yaml:"username"`       // 数据库用户名
	Password     string `yaml:"password"`       // 数据库密码
	Host         string `yaml:"host"`           // 数据库地址
	Name         string `yaml:"name"`           // 数据库名称
	TablePrefix  string `yaml:"table-prefix"`   // 表名前缀
	Charset      string `yaml:"charset"`        // 字符集
	ParseTime    bool   `yaml:"parse-time"`     // 是否解析时间
	MaxIdleConns int    `yaml:"max-idle-conns"` // 连接池空闲连接最大数量
	MaxOpenConns int    `yaml:"max-open-conns"` // 打开数据库连接最大数量
	RunMode      string `yaml:"-"`              // debug 模式下输出 SQL 日志
}

type Dao struct {
	db       *gorm.DB
	mu       sync.Mutex
	migrated map[string]bool
}

func New(db *gorm.DB) *Dao {
	return &Dao{
		db:       db,
		migrated: make(map[string]bool),
	}
}

func (d *Dao) DB() *gorm.DB {
	return d.db
}

// useDB 返回数据库连接，并确保指定模型的表结构已迁移（每个模型只执行一次）
func (d *Dao) useDB(migrateKey string) *gorm.DB {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.migrated[migrateKey] {
		_ = model.AutoMigrate(d.db, migrateKey)
		d.migrated[migrateKey] = true
	}
	return d.db
}

func NewDBEngine(c Database) (*gorm.DB, error) {

	dialector := userDialector(c)
	if dialector == nil {
		return nil, fmt.Errorf("unsupported database type %q", c.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀
			SingularTable: true,          // 使用单数表名
		},
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	} else {
		db.Config.Logger = logger.Default.LogMode(logger.Silent)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)

	// SetMaxOpenConns 设置打开数据库连接的最大数量。
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	return db, nil
}

func userDialector(c Database) gorm.Dialector {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		))
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		))
	case "sqlite":
		if !fileurl.IsExist(c.Path) {
			fileurl.CreatePath(c.Path, os.ModePerm)
		}
		return sqlite.Open(c.Path)
	}
	return nil
}

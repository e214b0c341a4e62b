package domain

import "time"

// Note 笔记领域模型
type Note struct {
	ID        int64
	UID       int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEdited 判断笔记创建后是否被编辑过
func (n *Note) IsEdited() bool {
	return !n.UpdatedAt.Equal(n.CreatedAt)
}

// IsEmpty 判断笔记标题和内容是否均为空
func (n *Note) IsEmpty() bool {
	return n.Title == "" && n.Content == ""
}

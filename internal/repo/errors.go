package repo

import (
	"errors"

	"gorm.io/gorm"

	"salesdesk/internal/core/database"
)

// missing 记录不存在，或 id 格式不可能匹配任何行
func missing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || database.IsInvalidText(err)
}

// affected 写操作的受影响行数；id 格式非法视为 0 行
func affected(res *gorm.DB) (int64, error) {
	if database.IsInvalidText(res.Error) {
		return 0, nil
	}
	return res.RowsAffected, res.Error
}

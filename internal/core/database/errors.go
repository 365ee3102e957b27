package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pg: invalid_text_representation
const pgInvalidText = "22P02"

// IsInvalidText 参数无法转换成列类型（例如非 uuid 字符串去查 uuid 列）。
// 这类 id 不可能对应任何行，调用方按"查无此行"处理。
func IsInvalidText(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == pgInvalidText
}

package repositories

import (
	"database/sql"
	"fmt"
)

// checkRowsAffected возвращает количество затронутых строк или ошибку драйвера.
func checkRowsAffected(result sql.Result) (int64, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

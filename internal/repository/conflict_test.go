package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestIsDuplicateEntry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "gorm translated duplicate key",
			err:  gorm.ErrDuplicatedKey,
			want: true,
		},
		{
			name: "wrapped gorm duplicate key",
			err:  fmt.Errorf("create revision: %w", gorm.ErrDuplicatedKey),
			want: true,
		},
		{
			name: "raw mysql 1062",
			err:  &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-3' for key 'uq_preset_revision'"},
			want: true,
		},
		{
			name: "wrapped mysql 1062",
			err:  fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}),
			want: true,
		},
		{
			name: "other mysql error",
			err:  &mysql.MySQLError{Number: 1213, Message: "Deadlock found"},
			want: false,
		},
		{
			name: "record not found",
			err:  gorm.ErrRecordNotFound,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateEntry(tt.err); got != tt.want {
				t.Errorf("IsDuplicateEntry(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

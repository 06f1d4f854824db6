package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Form is a tenant's form definition, the source a preset is built from.
type Form struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID    string         `gorm:"column:tenant_id;type:varchar(36);index;not null" json:"tenant_id"`
	Name        string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Config      datatypes.JSON `gorm:"column:config;type:json" json:"config"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Fields []FormField `gorm:"foreignKey:FormID" json:"fields,omitempty"`
}

func (Form) TableName() string { return "forms" }

// FormField is a single field of a form, ordered by Position.
type FormField struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FormID      uint64         `gorm:"column:form_id;index;not null" json:"form_id"`
	FieldKey    string         `gorm:"column:field_key;type:varchar(100);not null" json:"field_key"`
	Label       string         `gorm:"column:label;type:varchar(255);not null" json:"label"`
	FieldType   string         `gorm:"column:field_type;type:varchar(50);not null" json:"field_type"`
	Placeholder string         `gorm:"column:placeholder;type:varchar(255)" json:"placeholder"`
	HelpText    string         `gorm:"column:help_text;type:varchar(500)" json:"help_text"`
	IsRequired  bool           `gorm:"column:is_required;default:false" json:"is_required"`
	IsActive    bool           `gorm:"column:is_active;default:true" json:"is_active"`
	Position    int            `gorm:"column:position;default:0" json:"position"`
	Config      datatypes.JSON `gorm:"column:config;type:json" json:"config"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FormField) TableName() string { return "form_fields" }

// CreateFormRequest form creation payload
type CreateFormRequest struct {
	Name        string                   `json:"name" binding:"required,max=255"`
	Description string                   `json:"description"`
	Config      datatypes.JSON           `json:"config"`
	Fields      []CreateFormFieldRequest `json:"fields"`
}

// CreateFormFieldRequest single field in a form creation payload
type CreateFormFieldRequest struct {
	FieldKey    string         `json:"field_key" binding:"required,max=100"`
	Label       string         `json:"label" binding:"required,max=255"`
	FieldType   string         `json:"field_type" binding:"required,max=50"`
	Placeholder string         `json:"placeholder"`
	HelpText    string         `json:"help_text"`
	IsRequired  bool           `json:"is_required"`
	IsActive    *bool          `json:"is_active"`
	Position    int            `json:"position"`
	Config      datatypes.JSON `json:"config"`
}

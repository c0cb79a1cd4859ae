package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type Company struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:text;not null"`
	InterviewQuota int       `gorm:"type:int;not null;default:0"`
	CreatedAt      time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt      time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Student struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName        string    `gorm:"type:text;not null"`
	TokensRemaining int       `gorm:"type:int;not null;default:0"`
	TokensEngaged   int       `gorm:"type:int;not null;default:0"`
	TokensConsumed  int       `gorm:"type:int;not null;default:0"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:text;not null"`
	Quota     int       `gorm:"type:int;not null;default:0"`
	IsActive  bool      `gorm:"type:boolean;not null;default:true"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Company   Company   `gorm:"foreignKey:CompanyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Application struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_applications_job_student"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_applications_job_student"`
	Status    string    `gorm:"type:text;not null;index"`
	Source    string    `gorm:"type:text;not null;default:APPLICATION"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Job       Job       `gorm:"foreignKey:JobID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Student   Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Interview struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_interviews_company_time;uniqueIndex:uniq_interviews_company_slot,where:status <> 'CANCELLED'"`
	StudentID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_interviews_student_time;uniqueIndex:uniq_interviews_student_slot,where:status <> 'CANCELLED'"`
	ApplicationID *uuid.UUID `gorm:"type:uuid"`
	Title         string     `gorm:"type:text"`
	DateTime      time.Time  `gorm:"type:timestamptz;not null;index:idx_interviews_company_time;index:idx_interviews_student_time;uniqueIndex:uniq_interviews_company_slot;uniqueIndex:uniq_interviews_student_slot"`
	Room          string     `gorm:"type:text"`
	Status        string     `gorm:"type:text;not null"`
	Source        string     `gorm:"type:text;not null;default:APPLICATION"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type Invitation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_invitations_job_student"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_job_student"`
	Status    string    `gorm:"type:text;not null"`
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type TokenEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount    int       `gorm:"type:int;not null"`
	Kind      string    `gorm:"type:text;not null"`
	Reason    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Student   Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type      string     `gorm:"type:text;not null"`
	Title     string     `gorm:"type:text;not null"`
	Message   string     `gorm:"type:text"`
	RelatedID *uuid.UUID `gorm:"type:uuid"`
	Read      bool       `gorm:"type:boolean;not null;default:false"`
	CreatedAt time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type Audit struct {
	ID      int64             `gorm:"type:bigserial;primaryKey"`
	Actor   string            `gorm:"type:text;not null"`
	Action  string            `gorm:"type:text;not null"`
	Obj     string            `gorm:"type:text"`
	Details datatypes.JSONMap `gorm:"type:jsonb"`
	At      time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (Audit) TableName() string { return "audit" }

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&Company{},
		&Student{},
		&Job{},
		&Application{},
		&Interview{},
		&Invitation{},
		&TokenEntry{},
		&Notification{},
		&Audit{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&Job{}, "Company"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Application{}, "Job"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Application{}, "Student"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&TokenEntry{}, "Student"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&Audit{},
		&Notification{},
		&TokenEntry{},
		&Invitation{},
		&Interview{},
		&Application{},
		&Job{},
		&Student{},
		&Company{},
	); err != nil {
		return err
	}

	return nil
}

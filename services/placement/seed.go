package placement

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile describes fixture data loaded by placementctl.
type SeedFile struct {
	Companies []SeedCompany `yaml:"companies"`
	Students  []SeedStudent `yaml:"students"`
}

type SeedCompany struct {
	Name           string    `yaml:"name"`
	InterviewQuota int       `yaml:"interview_quota"`
	Jobs           []SeedJob `yaml:"jobs"`
}

type SeedJob struct {
	Title  string `yaml:"title"`
	Quota  int    `yaml:"quota"`
	Active *bool  `yaml:"active"`
}

type SeedStudent struct {
	FullName string `yaml:"full_name"`
	Tokens   int    `yaml:"tokens"`
}

// LoadSeedFile parses a YAML fixture file.
func LoadSeedFile(path string) (SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}

	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// Seed creates companies, jobs, and students from fixture data. Student token
// allocations go through the ledger so the balances stay replayable.
func (e *Engine) Seed(ctx context.Context, f SeedFile) error {
	return e.orm(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sc := range f.Companies {
			company := companyModel{
				ID:             uuid.New(),
				Name:           sc.Name,
				InterviewQuota: sc.InterviewQuota,
			}
			if err := tx.Create(&company).Error; err != nil {
				return err
			}

			for _, sj := range sc.Jobs {
				active := true
				if sj.Active != nil {
					active = *sj.Active
				}
				job := jobModel{
					ID:        uuid.New(),
					CompanyID: company.ID,
					Title:     sj.Title,
					Quota:     sj.Quota,
					IsActive:  active,
				}
				if err := tx.Create(&job).Error; err != nil {
					return err
				}
			}
		}

		for _, ss := range f.Students {
			student := studentModel{
				ID:       uuid.New(),
				FullName: ss.FullName,
			}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
			if ss.Tokens > 0 {
				if err := ledgerGrant(tx, student.ID, ss.Tokens, "Initial allocation"); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

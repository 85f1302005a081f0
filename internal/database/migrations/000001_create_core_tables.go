package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateCoreTables creates the agent, catalog and application tables
func CreateCoreTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_core_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

				CREATE TABLE IF NOT EXISTS agents (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					email VARCHAR(255) NOT NULL UNIQUE,
					agent_code VARCHAR(50) NOT NULL UNIQUE,
					first_name VARCHAR(100),
					last_name VARCHAR(100),
					password_hash VARCHAR(255) NOT NULL,
					role VARCHAR(20) NOT NULL DEFAULT 'agent',
					is_active BOOLEAN DEFAULT TRUE,
					phone_number VARCHAR(20),
					country_code VARCHAR(5),
					last_login_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_agents_email ON agents(email);
				CREATE INDEX idx_agents_agent_code ON agents(agent_code);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS universities (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					name VARCHAR(255) NOT NULL,
					slug VARCHAR(255) NOT NULL UNIQUE,
					country VARCHAR(100),
					city VARCHAR(100),
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE TABLE IF NOT EXISTS programs (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					university_id UUID NOT NULL REFERENCES universities(id),
					name VARCHAR(255) NOT NULL,
					degree_type VARCHAR(20) NOT NULL,
					tuition_fee DECIMAL(20,2) DEFAULT 0,
					agent_commission DECIMAL(20,2) DEFAULT 0,
					currency VARCHAR(3) NOT NULL DEFAULT 'USD',
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_programs_university_id ON programs(university_id);

				CREATE TABLE IF NOT EXISTS scholarship_configs (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					university_id UUID NOT NULL REFERENCES universities(id),
					degree_type VARCHAR(20) NOT NULL,
					agent_threshold INTEGER NOT NULL DEFAULT 5,
					system_threshold INTEGER NOT NULL DEFAULT 10,
					is_active BOOLEAN DEFAULT TRUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE UNIQUE INDEX idx_scholarship_configs_tuple ON scholarship_configs(university_id, degree_type);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS students (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					agent_id UUID NOT NULL REFERENCES agents(id),
					first_name VARCHAR(100) NOT NULL,
					last_name VARCHAR(100) NOT NULL,
					email VARCHAR(255),
					phone_number VARCHAR(20),
					nationality VARCHAR(100),
					date_of_birth TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_students_agent_id ON students(agent_id);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS applications (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					application_number VARCHAR(100) NOT NULL UNIQUE,
					student_id UUID NOT NULL REFERENCES students(id),
					program_id UUID NOT NULL REFERENCES programs(id),
					agent_id UUID NOT NULL REFERENCES agents(id),
					status VARCHAR(40) NOT NULL DEFAULT 'draft',
					commission_amount DECIMAL(20,2) DEFAULT 0,
					commission_paid BOOLEAN DEFAULT FALSE,
					assigned_admin_id UUID REFERENCES agents(id),
					notes TEXT,
					submitted_at TIMESTAMP WITH TIME ZONE,
					reviewed_at TIMESTAMP WITH TIME ZONE,
					decision_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_applications_agent_id ON applications(agent_id);
				CREATE INDEX idx_applications_student_id ON applications(student_id);
				CREATE INDEX idx_applications_program_id ON applications(program_id);
				CREATE INDEX idx_applications_status ON applications(status);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS applications;
				DROP TABLE IF EXISTS students;
				DROP TABLE IF EXISTS scholarship_configs;
				DROP TABLE IF EXISTS programs;
				DROP TABLE IF EXISTS universities;
				DROP TABLE IF EXISTS agents;
			`).Error
		},
	}
}

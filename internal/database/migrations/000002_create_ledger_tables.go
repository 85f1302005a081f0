package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateLedgerTables creates the commission, scholarship and wallet tables
func CreateLedgerTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_ledger_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS commission_records (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					application_id UUID NOT NULL UNIQUE REFERENCES applications(id),
					agent_id UUID NOT NULL REFERENCES agents(id),
					amount DECIMAL(20,2) NOT NULL,
					currency VARCHAR(3) NOT NULL DEFAULT 'USD',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_commission_records_agent_id ON commission_records(agent_id);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS scholarship_points (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					agent_id UUID NOT NULL REFERENCES agents(id),
					university_id UUID NOT NULL REFERENCES universities(id),
					degree_type VARCHAR(20) NOT NULL,
					application_year INTEGER NOT NULL,
					qualifying_count INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE UNIQUE INDEX idx_scholarship_points_tuple ON scholarship_points(agent_id, university_id, degree_type, application_year);

				CREATE TABLE IF NOT EXISTS scholarship_awards (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					award_number VARCHAR(100) NOT NULL UNIQUE,
					agent_id UUID NOT NULL REFERENCES agents(id),
					university_id UUID NOT NULL REFERENCES universities(id),
					degree_type VARCHAR(20) NOT NULL,
					application_year INTEGER NOT NULL,
					qualifying_point_count INTEGER NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					notes TEXT,
					awarded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					approved_at TIMESTAMP WITH TIME ZONE,
					paid_at TIMESTAMP WITH TIME ZONE,
					expired_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_scholarship_awards_agent_id ON scholarship_awards(agent_id);
				CREATE INDEX idx_scholarship_awards_university_id ON scholarship_awards(university_id);
				CREATE INDEX idx_scholarship_awards_application_year ON scholarship_awards(application_year);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS wallets (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					agent_id UUID NOT NULL UNIQUE REFERENCES agents(id),
					currency VARCHAR(3) NOT NULL DEFAULT 'USD',
					balance DECIMAL(20,2) DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE TABLE IF NOT EXISTS wallet_transactions (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					wallet_id UUID NOT NULL REFERENCES wallets(id),
					type VARCHAR(50) NOT NULL,
					amount DECIMAL(20,2) NOT NULL,
					currency VARCHAR(3) NOT NULL,
					reference VARCHAR(100),
					description TEXT,
					meta_data JSONB,
					balance_before DECIMAL(20,2),
					balance_after DECIMAL(20,2),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_wallet_transactions_wallet_id ON wallet_transactions(wallet_id);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS payouts (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					reference VARCHAR(100) NOT NULL UNIQUE,
					agent_id UUID NOT NULL REFERENCES agents(id),
					wallet_id UUID NOT NULL REFERENCES wallets(id),
					amount DECIMAL(20,2) NOT NULL,
					currency VARCHAR(3) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					admin_notes TEXT,
					decided_by_id UUID REFERENCES agents(id),
					requested_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					processed_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_payouts_agent_id ON payouts(agent_id);
				CREATE INDEX idx_payouts_status ON payouts(status);

				CREATE TABLE IF NOT EXISTS payout_histories (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					payout_id UUID NOT NULL REFERENCES payouts(id),
					status VARCHAR(20) NOT NULL,
					notes TEXT,
					changed_by UUID,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_payout_histories_payout_id ON payout_histories(payout_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS payout_histories;
				DROP TABLE IF EXISTS payouts;
				DROP TABLE IF EXISTS wallet_transactions;
				DROP TABLE IF EXISTS wallets;
				DROP TABLE IF EXISTS scholarship_awards;
				DROP TABLE IF EXISTS scholarship_points;
				DROP TABLE IF EXISTS commission_records;
			`).Error
		},
	}
}

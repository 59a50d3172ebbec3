package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/auth"
	"taskhub/internal/domain/scoring"
	"taskhub/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	departmentID, err := ensureDepartment(ctx, pool, "General")
	if err != nil {
		return err
	}

	if err := ensureDefaultWeights(ctx, pool, departmentID); err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" {
		if err := ensureAdminUser(ctx, pool, roleIDs[auth.RoleAdmin], departmentID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}

	return nil
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		if _, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm); err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", roleName).Scan(&id)
		if err != nil {
			if err := pool.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", roleName).Scan(&id); err != nil {
				return nil, err
			}
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, perm := range perms {
			if _, err := pool.Exec(ctx, `
        INSERT INTO role_permissions (role_id, permission_id)
        SELECT $1, id FROM permissions WHERE key = $2
        ON CONFLICT DO NOTHING
      `, roleID, perm); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureDepartment(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM departments WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err := pool.QueryRow(ctx, "INSERT INTO departments (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureDefaultWeights(ctx context.Context, pool *pgxpool.Pool, departmentID string) error {
	weights := scoring.DefaultWeights()
	_, err := pool.Exec(ctx, `
    INSERT INTO scoring_weights (department_id, output_weight, quality_weight, reliability_weight, consistency_weight, weekly_output_target)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (department_id) DO NOTHING
  `, departmentID, weights.Output, weights.Quality, weights.Reliability, weights.Consistency, weights.WeeklyTarget)
	return err
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, departmentID, email, password string) error {
	var existing string
	if err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing); err == nil {
		return nil
	}
	if password == "" {
		password = "change-me-now"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, full_name, password_hash, role_id, department_id, status)
    VALUES ($1,$2,$3,$4,$5,'active')
  `, email, "Administrator", hash, roleID, departmentID)
	return err
}

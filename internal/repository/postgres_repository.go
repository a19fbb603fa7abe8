package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

// PostgresRepository implements the Repository interface using PostgreSQL.
// Embedded lists and sub-documents are stored as JSONB.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func rowsAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// whereBuilder collects predicates with $n placeholders.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// User repository methods

const userColumns = `id, name, email, password, role, company, is_active, last_login, created_at, updated_at`

type userRow struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	Company   string     `db:"company"`
	IsActive  bool       `db:"is_active"`
	LastLogin *time.Time `db:"last_login"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

func (u userRow) model() models.User {
	return models.User{
		ID: u.ID, Name: u.Name, Email: u.Email, Password: u.Password,
		Role: models.Role(u.Role), Company: u.Company, IsActive: u.IsActive,
		LastLogin: u.LastLogin, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Name, user.Email, user.Password, user.Role, user.Company,
		user.IsActive, user.LastLogin, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	return err
}

func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	u := row.model()
	return &u, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return nil, notFound(err)
	}
	u := row.model()
	return &u, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	w := &whereBuilder{}
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.Active != nil {
		w.add("is_active = ?", *f.Active)
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR email ILIKE ? OR company ILIKE ?)", "%"+f.Search+"%")
	}

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users`+w.String()+` ORDER BY created_at DESC`, w.args...); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.model())
	}
	return users, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, password = $4, role = $5, company = $6,
			is_active = $7, last_login = $8, updated_at = $9
		WHERE id = $1`,
		user.ID, user.Name, user.Email, user.Password, user.Role, user.Company,
		user.IsActive, user.LastLogin, user.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	return rowsAffected(res, err)
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// Network repository methods

const networkColumns = `id, name, chain_id, description, owner, status, deployment_type, node_count,
	validators, modules, tokenomics, governance, deployment, created_at, updated_at, deployed_at, last_active_at`

type networkRow struct {
	ID             string     `db:"id"`
	Name           string     `db:"name"`
	ChainID        string     `db:"chain_id"`
	Description    string     `db:"description"`
	Owner          string     `db:"owner"`
	Status         string     `db:"status"`
	DeploymentType string     `db:"deployment_type"`
	NodeCount      int        `db:"node_count"`
	Validators     []byte     `db:"validators"`
	Modules        []byte     `db:"modules"`
	Tokenomics     []byte     `db:"tokenomics"`
	Governance     []byte     `db:"governance"`
	Deployment     []byte     `db:"deployment"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeployedAt     *time.Time `db:"deployed_at"`
	LastActiveAt   *time.Time `db:"last_active_at"`
}

func (row networkRow) model() (models.Network, error) {
	n := models.Network{
		ID: row.ID, Name: row.Name, ChainID: row.ChainID, Description: row.Description,
		Owner: row.Owner, Status: models.NetworkStatus(row.Status),
		DeploymentType: models.DeploymentType(row.DeploymentType), NodeCount: row.NodeCount,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
		DeployedAt: row.DeployedAt, LastActiveAt: row.LastActiveAt,
	}
	for _, part := range []struct {
		raw  []byte
		dest interface{}
	}{
		{row.Validators, &n.Validators},
		{row.Modules, &n.Modules},
		{row.Tokenomics, &n.Tokenomics},
		{row.Governance, &n.Governance},
		{row.Deployment, &n.Deployment},
	} {
		if len(part.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(part.raw, part.dest); err != nil {
			return n, fmt.Errorf("decode network %s: %w", row.ID, err)
		}
	}
	return n, nil
}

// jsonArgs encodes the JSONB columns of a network, in column order.
func jsonArgs(n *models.Network) ([]interface{}, error) {
	validators, modules := n.Validators, n.Modules
	if validators == nil {
		validators = []models.Validator{}
	}
	if modules == nil {
		modules = []models.Module{}
	}
	var out []interface{}
	for _, v := range []interface{}{validators, modules, n.Tokenomics, n.Governance, n.Deployment} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}

func (r *PostgresRepository) CreateNetwork(ctx context.Context, network *models.Network) error {
	if network.ID == "" {
		network.ID = uuid.New().String()
	}
	if network.CreatedAt.IsZero() {
		network.CreatedAt = time.Now().UTC()
	}
	network.UpdatedAt = network.CreatedAt

	docs, err := jsonArgs(network)
	if err != nil {
		return err
	}
	args := []interface{}{network.ID, network.Name, network.ChainID, network.Description, network.Owner,
		network.Status, network.DeploymentType, network.NodeCount}
	args = append(args, docs...)
	args = append(args, network.CreatedAt, network.UpdatedAt, network.DeployedAt, network.LastActiveAt)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO networks (`+networkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: chain id %s", ErrDuplicate, network.ChainID)
	}
	return err
}

func (r *PostgresRepository) GetNetwork(ctx context.Context, id string) (*models.Network, error) {
	var row networkRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+networkColumns+` FROM networks WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	n, err := row.model()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func networkWhere(f NetworkFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.DeploymentType != "" {
		w.add("deployment_type = ?", f.DeploymentType)
	}
	if f.Owner != "" {
		w.add("owner = ?", f.Owner)
	}
	if f.CreatedSince != nil {
		w.add("created_at >= ?", *f.CreatedSince)
	}
	return w
}

func (r *PostgresRepository) ListNetworks(ctx context.Context, f NetworkFilter) ([]models.Network, error) {
	w := networkWhere(f)
	query := `SELECT ` + networkColumns + ` FROM networks` + w.String() + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	var rows []networkRow
	if err := r.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, err
	}
	networks := make([]models.Network, 0, len(rows))
	for _, row := range rows {
		n, err := row.model()
		if err != nil {
			return nil, err
		}
		networks = append(networks, n)
	}
	return networks, nil
}

func (r *PostgresRepository) UpdateNetwork(ctx context.Context, network *models.Network) error {
	network.UpdatedAt = time.Now().UTC()
	docs, err := jsonArgs(network)
	if err != nil {
		return err
	}
	args := []interface{}{network.ID, network.Name, network.ChainID, network.Description, network.Owner,
		network.Status, network.DeploymentType, network.NodeCount}
	args = append(args, docs...)
	args = append(args, network.UpdatedAt, network.DeployedAt, network.LastActiveAt)

	res, err := r.db.ExecContext(ctx, `
		UPDATE networks SET name = $2, chain_id = $3, description = $4, owner = $5, status = $6,
			deployment_type = $7, node_count = $8, validators = $9, modules = $10, tokenomics = $11,
			governance = $12, deployment = $13, updated_at = $14, deployed_at = $15, last_active_at = $16
		WHERE id = $1`, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: chain id %s", ErrDuplicate, network.ChainID)
	}
	return rowsAffected(res, err)
}

func (r *PostgresRepository) DeleteNetwork(ctx context.Context, id string) error {
	return rowsAffected(r.db.ExecContext(ctx, `DELETE FROM networks WHERE id = $1`, id))
}

func (r *PostgresRepository) CountNetworks(ctx context.Context, f NetworkFilter) (int64, error) {
	w := networkWhere(f)
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM networks`+w.String(), w.args...)
	return n, err
}

func (r *PostgresRepository) CountNetworksBy(ctx context.Context, field NetworkField) (map[string]int64, error) {
	column := map[NetworkField]string{ByStatus: "status", ByDeploymentType: "deployment_type"}[field]
	if column == "" {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	var rows []struct {
		Key   string `db:"key"`
		Count int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+column+` AS key, COUNT(*) AS count FROM networks GROUP BY `+column); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *PostgresRepository) ValidatorTotal(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COALESCE(SUM(jsonb_array_length(validators)), 0) FROM networks`)
	return n, err
}

// System log repository methods

const logColumns = `id, level, source, message, details, user_id, network_id, timestamp,
	resolved, resolved_by, resolved_at, actions`

type logRow struct {
	ID         string     `db:"id"`
	Level      string     `db:"level"`
	Source     string     `db:"source"`
	Message    string     `db:"message"`
	Details    []byte     `db:"details"`
	UserID     string     `db:"user_id"`
	NetworkID  string     `db:"network_id"`
	Timestamp  time.Time  `db:"timestamp"`
	Resolved   bool       `db:"resolved"`
	ResolvedBy string     `db:"resolved_by"`
	ResolvedAt *time.Time `db:"resolved_at"`
	Actions    []byte     `db:"actions"`
}

func (row logRow) model() (models.SystemLog, error) {
	l := models.SystemLog{
		ID: row.ID, Level: models.LogLevel(row.Level), Source: row.Source, Message: row.Message,
		UserID: row.UserID, NetworkID: row.NetworkID, Timestamp: row.Timestamp,
		Resolved: row.Resolved, ResolvedBy: row.ResolvedBy, ResolvedAt: row.ResolvedAt,
		Actions: []models.LogAction{},
	}
	if len(row.Details) > 0 {
		l.Details = json.RawMessage(row.Details)
	}
	if len(row.Actions) > 0 {
		if err := json.Unmarshal(row.Actions, &l.Actions); err != nil {
			return l, fmt.Errorf("decode log %s: %w", row.ID, err)
		}
	}
	return l, nil
}

func logArgs(log *models.SystemLog) (details interface{}, actions string, err error) {
	if len(log.Details) > 0 {
		details = string(log.Details)
	}
	list := log.Actions
	if list == nil {
		list = []models.LogAction{}
	}
	b, err := json.Marshal(list)
	return details, string(b), err
}

func (r *PostgresRepository) CreateLog(ctx context.Context, log *models.SystemLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	if log.Actions == nil {
		log.Actions = []models.LogAction{}
	}
	details, actions, err := logArgs(log)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO system_logs (`+logColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		log.ID, log.Level, log.Source, log.Message, details, log.UserID, log.NetworkID,
		log.Timestamp, log.Resolved, log.ResolvedBy, log.ResolvedAt, actions)
	return err
}

func (r *PostgresRepository) GetLog(ctx context.Context, id string) (*models.SystemLog, error) {
	var row logRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+logColumns+` FROM system_logs WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	l, err := row.model()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func logWhere(f LogFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Level != "" {
		w.add("level = ?", f.Level)
	}
	if f.Source != "" {
		w.add("source = ?", f.Source)
	}
	if f.Resolved != nil {
		w.add("resolved = ?", *f.Resolved)
	}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.NetworkID != "" {
		w.add("network_id = ?", f.NetworkID)
	}
	if f.Since != nil {
		w.add("timestamp >= ?", *f.Since)
	}
	return w
}

func (r *PostgresRepository) ListLogs(ctx context.Context, f LogFilter) ([]models.SystemLog, error) {
	w := logWhere(f)
	query := `SELECT ` + logColumns + ` FROM system_logs` + w.String() + ` ORDER BY timestamp DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Skip > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Skip)
	}

	var rows []logRow
	if err := r.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, err
	}
	logs := make([]models.SystemLog, 0, len(rows))
	for _, row := range rows {
		l, err := row.model()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (r *PostgresRepository) UpdateLog(ctx context.Context, log *models.SystemLog) error {
	details, actions, err := logArgs(log)
	if err != nil {
		return err
	}
	return rowsAffected(r.db.ExecContext(ctx, `
		UPDATE system_logs SET level = $2, source = $3, message = $4, details = $5, user_id = $6,
			network_id = $7, resolved = $8, resolved_by = $9, resolved_at = $10, actions = $11
		WHERE id = $1`,
		log.ID, log.Level, log.Source, log.Message, details, log.UserID, log.NetworkID,
		log.Resolved, log.ResolvedBy, log.ResolvedAt, actions))
}

func (r *PostgresRepository) CountLogs(ctx context.Context, f LogFilter) (int64, error) {
	w := logWhere(f)
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM system_logs`+w.String(), w.args...)
	return n, err
}

func (r *PostgresRepository) CountLogsByLevel(ctx context.Context, resolved *bool) (map[string]int64, error) {
	w := logWhere(LogFilter{Resolved: resolved})
	var rows []struct {
		Level string `db:"level"`
		Count int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT level, COUNT(*) AS count FROM system_logs`+w.String()+` GROUP BY level`, w.args...); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Level] = row.Count
	}
	return counts, nil
}

// Package persistence provides SQLite-based session storage: every city
// market, in-transit NPC shipments, the supply index walk, and the player.
// Saves are full replaces inside one transaction; a save taken mid-day and
// reloaded resumes the same day deterministically.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/seafall/tradewind/internal/content"
	"github.com/seafall/tradewind/internal/economy"
	"github.com/seafall/tradewind/internal/sim"
	"github.com/seafall/tradewind/internal/trade"
	"github.com/seafall/tradewind/internal/world"
)

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS markets (
		city_id TEXT PRIMARY KEY,
		stock_json TEXT NOT NULL,
		price_stock_json TEXT NOT NULL,
		top_needs_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shipments (
		id TEXT PRIMARY KEY,
		src_city_id TEXT NOT NULL,
		dst_city_id TEXT NOT NULL,
		good_id TEXT NOT NULL,
		qty REAL NOT NULL,
		eta_days INTEGER NOT NULL,
		created_day INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS supply_index (
		city_id TEXT NOT NULL,
		category TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (city_id, category)
	);

	CREATE TABLE IF NOT EXISTS player (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		money INTEGER NOT NULL,
		xp INTEGER NOT NULL,
		docked_city_id TEXT NOT NULL,
		master_lives INTEGER NOT NULL,
		master_lives_max INTEGER NOT NULL,
		ship_type_id TEXT NOT NULL,
		ship_name TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		hp INTEGER NOT NULL,
		cargo_json TEXT NOT NULL,
		houses_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shipments_dst ON shipments(dst_city_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSession writes the complete session state. Call between Update steps;
// the session must not be mutated concurrently.
func (db *DB) SaveSession(s *sim.Session) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveMarkets(tx, s.Markets); err != nil {
		return fmt.Errorf("save markets: %w", err)
	}
	if err := saveShipments(tx, s.Shipments); err != nil {
		return fmt.Errorf("save shipments: %w", err)
	}
	if err := saveSupply(tx, s.Supply); err != nil {
		return fmt.Errorf("save supply index: %w", err)
	}
	if err := savePlayer(tx, s.Player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	if err := saveMeta(tx, s); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("session saved", "day", s.Clock.Day, "shipments", len(s.Shipments))
	return nil
}

func saveMarkets(tx *sqlx.Tx, markets map[string]*economy.MarketState) error {
	if _, err := tx.Exec("DELETE FROM markets"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO markets
		(city_id, stock_json, price_stock_json, top_needs_json)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for cityID, m := range markets {
		stockJSON, _ := json.Marshal(m.Stock)
		psJSON, _ := json.Marshal(m.PriceStock)
		needsJSON, _ := json.Marshal(m.TopNeeds)

		if _, err := stmt.Exec(cityID, string(stockJSON), string(psJSON), string(needsJSON)); err != nil {
			return fmt.Errorf("insert market %s: %w", cityID, err)
		}
	}
	return nil
}

func saveShipments(tx *sqlx.Tx, shipments []*trade.Shipment) error {
	if _, err := tx.Exec("DELETE FROM shipments"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO shipments
		(id, src_city_id, dst_city_id, good_id, qty, eta_days, created_day)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sh := range shipments {
		if _, err := stmt.Exec(sh.ID, sh.SrcCityID, sh.DstCityID, sh.GoodID, sh.Qty, sh.ETADays, sh.CreatedDay); err != nil {
			return fmt.Errorf("insert shipment %s: %w", sh.ID, err)
		}
	}
	return nil
}

func saveSupply(tx *sqlx.Tx, supply economy.SupplyIndex) error {
	if _, err := tx.Exec("DELETE FROM supply_index"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO supply_index (city_id, category, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, v := range supply {
		if _, err := stmt.Exec(key.CityID, string(key.Category), v); err != nil {
			return err
		}
	}
	return nil
}

func savePlayer(tx *sqlx.Tx, p *world.Player) error {
	cargoJSON, _ := json.Marshal(p.Cargo.Lots)
	housesJSON, _ := json.Marshal(p.Houses)

	_, err := tx.Exec(`INSERT OR REPLACE INTO player
		(id, money, xp, docked_city_id, master_lives, master_lives_max,
		 ship_type_id, ship_name, pos_x, pos_y, hp, cargo_json, houses_json)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Money, p.XP, p.DockedCityID, p.MasterLives, p.MasterLivesMax,
		p.Ship.TypeID, p.Ship.Name, p.Ship.Pos.X, p.Ship.Pos.Y, p.Ship.HP,
		string(cargoJSON), string(housesJSON),
	)
	return err
}

func saveMeta(tx *sqlx.Tx, s *sim.Session) error {
	meta := map[string]string{
		"day":            strconv.Itoa(s.Clock.Day),
		"elapsed_sec":    strconv.FormatFloat(s.Clock.ElapsedSec, 'f', -1, 64),
		"meter_value":    strconv.FormatFloat(s.Meter.Value, 'f', -1, 64),
		"meter_cooldown": strconv.FormatFloat(s.Meter.CooldownSec, 'f', -1, 64),
		"seed":           strconv.FormatInt(s.Cfg.Seed, 10),
		"difficulty":     s.Cfg.Difficulty,
		"game_over":      strconv.FormatBool(s.GameOver),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return err
		}
	}
	return nil
}

// HasSession reports whether the database contains a restorable save.
func (db *DB) HasSession() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM player"); err != nil {
		return false
	}
	return n > 0
}

// LoadSession restores saved state into a freshly constructed session. The
// session must have been built from the same content and config (the seed
// is checked, content ids are trusted).
func (db *DB) LoadSession(s *sim.Session) error {
	if err := db.loadMeta(s); err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	if err := db.loadMarkets(s); err != nil {
		return fmt.Errorf("load markets: %w", err)
	}
	if err := db.loadShipments(s); err != nil {
		return fmt.Errorf("load shipments: %w", err)
	}
	if err := db.loadSupply(s); err != nil {
		return fmt.Errorf("load supply index: %w", err)
	}
	if err := db.loadPlayer(s); err != nil {
		return fmt.Errorf("load player: %w", err)
	}

	s.Meter.Clamp()
	s.Player.ClampMasterLives()

	slog.Info("session restored", "day", s.Clock.Day, "shipments", len(s.Shipments))
	return nil
}

func (db *DB) loadMeta(s *sim.Session) error {
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}
	if err := db.conn.Select(&rows, "SELECT key, value FROM session_meta"); err != nil {
		return err
	}

	for _, r := range rows {
		switch r.Key {
		case "day":
			if v, err := strconv.Atoi(r.Value); err == nil && v > 0 {
				s.Clock.Day = v
			}
		case "elapsed_sec":
			if v, err := strconv.ParseFloat(r.Value, 64); err == nil && v >= 0 {
				s.Clock.ElapsedSec = v
			}
		case "meter_value":
			if v, err := strconv.ParseFloat(r.Value, 64); err == nil {
				s.Meter.Value = v
			}
		case "meter_cooldown":
			if v, err := strconv.ParseFloat(r.Value, 64); err == nil {
				s.Meter.CooldownSec = v
			}
		case "seed":
			if v, err := strconv.ParseInt(r.Value, 10, 64); err == nil && v != s.Cfg.Seed {
				return fmt.Errorf("save was created with seed %d, config has %d", v, s.Cfg.Seed)
			}
		case "game_over":
			s.GameOver = r.Value == "true"
		}
	}
	return nil
}

func (db *DB) loadMarkets(s *sim.Session) error {
	rows := []struct {
		CityID    string `db:"city_id"`
		Stock     string `db:"stock_json"`
		PS        string `db:"price_stock_json"`
		TopNeeds  string `db:"top_needs_json"`
	}{}
	if err := db.conn.Select(&rows, "SELECT city_id, stock_json, price_stock_json, top_needs_json FROM markets"); err != nil {
		return err
	}

	for _, r := range rows {
		m, ok := s.Markets[r.CityID]
		if !ok {
			// City removed from content since the save; drop its market.
			continue
		}
		if err := json.Unmarshal([]byte(r.Stock), &m.Stock); err != nil {
			return fmt.Errorf("market %s stock: %w", r.CityID, err)
		}
		if err := json.Unmarshal([]byte(r.PS), &m.PriceStock); err != nil {
			return fmt.Errorf("market %s price stock: %w", r.CityID, err)
		}
		if err := json.Unmarshal([]byte(r.TopNeeds), &m.TopNeeds); err != nil {
			return fmt.Errorf("market %s top needs: %w", r.CityID, err)
		}
	}
	return nil
}

func (db *DB) loadShipments(s *sim.Session) error {
	rows := []struct {
		ID         string  `db:"id"`
		SrcCityID  string  `db:"src_city_id"`
		DstCityID  string  `db:"dst_city_id"`
		GoodID     string  `db:"good_id"`
		Qty        float64 `db:"qty"`
		ETADays    int     `db:"eta_days"`
		CreatedDay int     `db:"created_day"`
	}{}
	if err := db.conn.Select(&rows, "SELECT id, src_city_id, dst_city_id, good_id, qty, eta_days, created_day FROM shipments"); err != nil {
		return err
	}

	s.Shipments = s.Shipments[:0]
	for _, r := range rows {
		s.Shipments = append(s.Shipments, &trade.Shipment{
			ID:         r.ID,
			SrcCityID:  r.SrcCityID,
			DstCityID:  r.DstCityID,
			GoodID:     r.GoodID,
			Qty:        r.Qty,
			ETADays:    r.ETADays,
			CreatedDay: r.CreatedDay,
		})
	}
	return nil
}

func (db *DB) loadSupply(s *sim.Session) error {
	rows := []struct {
		CityID   string  `db:"city_id"`
		Category string  `db:"category"`
		Value    float64 `db:"value"`
	}{}
	if err := db.conn.Select(&rows, "SELECT city_id, category, value FROM supply_index"); err != nil {
		return err
	}

	for _, r := range rows {
		key := economy.SupplyKey{CityID: r.CityID, Category: content.Category(r.Category)}
		s.Supply[key] = r.Value
	}
	return nil
}

func (db *DB) loadPlayer(s *sim.Session) error {
	var row struct {
		Money          int     `db:"money"`
		XP             int     `db:"xp"`
		DockedCityID   string  `db:"docked_city_id"`
		MasterLives    int     `db:"master_lives"`
		MasterLivesMax int     `db:"master_lives_max"`
		ShipTypeID     string  `db:"ship_type_id"`
		ShipName       string  `db:"ship_name"`
		PosX           float64 `db:"pos_x"`
		PosY           float64 `db:"pos_y"`
		HP             int     `db:"hp"`
		CargoJSON      string  `db:"cargo_json"`
		HousesJSON     string  `db:"houses_json"`
	}
	if err := db.conn.Get(&row, "SELECT money, xp, docked_city_id, master_lives, master_lives_max, ship_type_id, ship_name, pos_x, pos_y, hp, cargo_json, houses_json FROM player WHERE id = 1"); err != nil {
		return err
	}

	p := s.Player
	p.Money = row.Money
	p.XP = row.XP
	p.DockedCityID = row.DockedCityID
	p.MasterLives = row.MasterLives
	p.MasterLivesMax = row.MasterLivesMax
	p.Ship.Pos = world.Vec2{X: row.PosX, Y: row.PosY}
	p.Ship.Name = row.ShipName

	// The ship type may differ from the config's starting ship; rebuild the
	// hull stats from its definition when it does.
	if row.ShipTypeID != p.Ship.TypeID {
		if sd, ok := s.Content.Ships[row.ShipTypeID]; ok {
			p.Ship.TypeID = sd.ID
			p.Ship.Speed = sd.Speed
			p.Ship.CapacityTons = sd.CapacityTons
			p.Ship.HPMax = sd.Combat.HPMax
			p.Ship.CrewMax = sd.CrewMax
			p.Ship.CrewRequired = sd.CrewRequired
			p.Ship.UpkeepPerDay = sd.UpkeepPerDay
		}
	}
	p.Ship.HP = row.HP
	if p.Ship.HP > p.Ship.HPMax {
		p.Ship.HP = p.Ship.HPMax
	}
	if p.Ship.HP < 1 {
		p.Ship.HP = 1
	}

	if err := json.Unmarshal([]byte(row.CargoJSON), &p.Cargo.Lots); err != nil {
		return fmt.Errorf("cargo: %w", err)
	}
	if err := json.Unmarshal([]byte(row.HousesJSON), &p.Houses); err != nil {
		return fmt.Errorf("houses: %w", err)
	}
	if p.Houses == nil {
		p.Houses = make(map[string]bool)
	}
	return nil
}

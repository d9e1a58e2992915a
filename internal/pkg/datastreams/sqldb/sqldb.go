/*
sqldb.go Datastream handler that persists generator status and simulation
results to MySQL. Status messages upsert the realtime row for the sending
generator; result messages append to the results table.
*/

package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"

	"github.com/avercast/pse_core/internal/pkg/msg"
)

type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database"`
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

func New(configPath string, system msg.Publisher) (Handler, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, _ := uuid.NewUUID()

	inbox := make(chan msg.Msg, 50)

	chStatus, err := system.Subscribe(pid, msg.Status)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chStatus, inbox)

	chResult, err := system.Subscribe(pid, msg.Result)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chResult, inbox)

	stop := make(chan bool)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   stop,
	}, nil
}

// Stop closes the stop channel so shutdown cannot block when Process has
// already returned.
func (h *Handler) Stop() {
	close(h.stop)
}

func (h Handler) DB() (*sql.DB, error) {
	uri := fmt.Sprintf("%v:%v@tcp(%v:%v)/%v", h.config.Username, h.config.Password, h.config.Server, h.config.Port, h.config.Database)
	db, err := sql.Open("mysql", uri)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (h Handler) Process() {
	db, err := h.DB()
	if err != nil {
		panic(err) // #TODO Handle failed connection
	}
	defer db.Close()

	err = initDBTables(db)
	if err != nil {
		panic(err) // #TODO Handle failed query
	}

loop:
	for {
		select {
		case m := <-h.inbox:
			data, err := json.Marshal(m.Payload())
			if err != nil {
				log.Printf("error %s marshaling payload", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			switch m.Topic() {
			case msg.Status:
				err = upsertStatus(ctx, db, m.PID(), data)
			case msg.Result:
				err = insertResult(ctx, db, m.PID(), data)
			}
			cancel()
			if err != nil {
				log.Printf("error %s update db", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[SQL] Process Shutdown")
}

func initDBTables(db *sql.DB) error {
	sqlStatement := `CREATE TABLE IF NOT EXISTS generator_status(
		uuid VARCHAR(36) PRIMARY KEY,
		status BLOB)`
	if _, err := db.Exec(sqlStatement); err != nil {
		return err
	}

	sqlStatement = `CREATE TABLE IF NOT EXISTS generator_results(
		id INT AUTO_INCREMENT PRIMARY KEY,
		uuid VARCHAR(36),
		result BLOB)`
	_, err := db.Exec(sqlStatement)
	return err
}

func upsertStatus(ctx context.Context, db *sql.DB, pid uuid.UUID, data []byte) error {
	sqlStatement := `INSERT INTO generator_status (uuid, status) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE status = VALUES(status)`
	_, err := db.ExecContext(ctx, sqlStatement, pid.String(), data)
	return err
}

func insertResult(ctx context.Context, db *sql.DB, pid uuid.UUID, data []byte) error {
	sqlStatement := `INSERT INTO generator_results (uuid, result) VALUES (?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement, pid.String(), data)
	return err
}

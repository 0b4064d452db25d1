package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
)

type (
	// DB keeps every table in process memory. Repositories journal the writes
	// made through the DBExecutor handed out by DB.RunInTx and ignore any other.
	DB struct {
		txMutex sync.Mutex

		user    *userTable
		student *studentTable
		history *historyTable
	}

	userTable struct {
		mutex sync.RWMutex
		pk    int
		t     map[int]user.User
	}

	studentTable struct {
		mutex sync.RWMutex
		pk    int
		t     map[int]student.Student
	}

	historyTable struct {
		mutex sync.RWMutex
		pk    int
		t     map[int]prediction.History
	}

	// tx journals the writes made through it so that they can be undone.
	// It satisfies core.DBExecutor for signature purposes only: its SQL methods are never called.
	tx struct {
		core.DBExecutor
		mutex sync.Mutex
		undo  []func()
	}
)

var _ core.TxRunner = (*DB)(nil)

func Open() *DB {
	return &DB{
		user:    &userTable{t: make(map[int]user.User)},
		student: &studentTable{t: make(map[int]student.Student)},
		history: &historyTable{t: make(map[int]prediction.History)},
	}
}

// RunInTx runs fn with a journaling DBExecutor. If fn fails, the writes made
// through that executor are undone in reverse order; writes made outside the
// transaction meanwhile are kept. Transactions are serialized.
func (db *DB) RunInTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.txMutex.Lock()
	defer db.txMutex.Unlock()

	t := new(tx)
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (t *tx) rollback() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// journal records undo if the write was made through a transaction.
// undo runs without any table lock held.
func journal(exec []core.DBExecutor, undo func()) {
	if len(exec) == 0 {
		return
	}
	if t, ok := exec[0].(*tx); ok {
		t.mutex.Lock()
		t.undo = append(t.undo, undo)
		t.mutex.Unlock()
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.pk, db.user.t = 0, make(map[int]user.User)
	db.user.mutex.Unlock()

	db.student.mutex.Lock()
	db.student.pk, db.student.t = 0, make(map[int]student.Student)
	db.student.mutex.Unlock()

	db.history.mutex.Lock()
	db.history.pk, db.history.t = 0, make(map[int]prediction.History)
	db.history.mutex.Unlock()
}

// dropCreated deletes the row created with id, and gives its primary key back
// if no row was created after it.
func dropCreated(mutex *sync.RWMutex, pk *int, id int, del func()) {
	mutex.Lock()
	defer mutex.Unlock()
	del()
	if *pk == id {
		*pk--
	}
}

package alerts

import (
	"sync"
	"time"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Findings состояние фоновых проверок: время последней проверки и
// множество ключей уже отправленных оповещений. Создается пустым при
// старте процесса и принадлежит движку, который передает его явно,
// без глобального состояния. Доступ синхронизирован, потому что
// правила внутри одного тика могут обрабатываться конкурентно.
type Findings struct {
	mu          sync.Mutex
	lastChecked time.Time
	notified    map[string]struct{}
}

// NewFindings создает пустое состояние
func NewFindings() *Findings {
	return &Findings{notified: make(map[string]struct{})}
}

// Seen сообщает, отправлялось ли уже оповещение с таким ключом
func (f *Findings) Seen(key models.NotifiedDealKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.notified[key.String()]
	return ok
}

// Mark помечает ключи как отправленные. Повторная пометка того же
// ключа — no-op, поэтому гонка двух тиков по одной сделке безвредна.
func (f *Findings) Mark(keys []models.NotifiedDealKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		f.notified[key.String()] = struct{}{}
	}
}

// SetLastChecked записывает время последней проверки
func (f *Findings) SetLastChecked(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChecked = t
}

// LastChecked возвращает время последней проверки
func (f *Findings) LastChecked() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastChecked
}

// Len возвращает количество помеченных ключей
func (f *Findings) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notified)
}

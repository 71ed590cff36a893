package memory

import (
	"github.com/fdg312/health-navigator/internal/storage"
)

// ErrNotFound совпадает с storage.ErrNotFound, чтобы errors.Is
// работал одинаково для обоих бэкендов.
var ErrNotFound = storage.ErrNotFound

// MemoryStorage — in-memory реализация всех хранилищ.
// Используется в тестах и в режиме STORAGE_MODE=memory.
type MemoryStorage struct {
	medications   *MedicationsMemoryStorage
	chat          *ChatMemoryStorage
	waterIntakes  *WaterIntakesMemoryStorage
	notifications *NotificationsMemoryStorage
	settings      *SettingsMemoryStorage
	reports       *ReportsMemoryStorage
}

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{
		medications:   NewMedicationsMemoryStorage(),
		chat:          NewChatMemoryStorage(),
		waterIntakes:  NewWaterIntakesMemoryStorage(),
		notifications: NewNotificationsMemoryStorage(),
		settings:      NewSettingsMemoryStorage(),
		reports:       NewReportsMemoryStorage(),
	}
}

func (m *MemoryStorage) Close() error {
	// no-op для memory
	return nil
}

func (m *MemoryStorage) GetMedicationsStorage() *MedicationsMemoryStorage {
	return m.medications
}

func (m *MemoryStorage) GetChatStorage() *ChatMemoryStorage {
	return m.chat
}

func (m *MemoryStorage) GetWaterIntakesStorage() *WaterIntakesMemoryStorage {
	return m.waterIntakes
}

func (m *MemoryStorage) GetNotificationsStorage() *NotificationsMemoryStorage {
	return m.notifications
}

func (m *MemoryStorage) GetSettingsStorage() *SettingsMemoryStorage {
	return m.settings
}

func (m *MemoryStorage) GetReportsStorage() *ReportsMemoryStorage {
	return m.reports
}

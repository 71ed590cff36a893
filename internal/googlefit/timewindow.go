package googlefit

import "time"

// Бэкенд Google Fit «доваривает» данные с задержкой, поэтому правую
// границу окна отодвигаем на две минуты назад.
const latencyBuffer = 2 * time.Minute

// DayWindow возвращает границы «сегодня»: локальная полночь и
// now минус буфер задержки. Все дневные запросы используют одно окно,
// чтобы параллельные выборки попадали в одинаковые корзины.
func DayWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = now.Add(-latencyBuffer)
	if end.Before(start) {
		end = start
	}
	return start, end
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

package attendance

import (
	"time"

	"kintai-backend/internal/settings"
)

// 導出項目はDB側では計算しない。書き込み直前にServiceから呼ぶ純関数のみ。

// isLate: 打刻時刻の壁時計（時刻成分のみ）がしきい値より厳密に後なら true。
// しきい値ちょうど（09:15:00）は late ではない。
func isLate(checkIn time.Time, th settings.LateThreshold) bool {
	d := time.Duration(checkIn.Hour())*time.Hour +
		time.Duration(checkIn.Minute())*time.Minute +
		time.Duration(checkIn.Second())*time.Second +
		time.Duration(checkIn.Nanosecond())
	limit := time.Duration(th.Hours)*time.Hour + time.Duration(th.Minutes)*time.Minute
	return d > limit
}

// totalHours: checkout − checkin を時間単位の小数で。丸めは表示側で行う。
func totalHours(checkIn, checkOut time.Time) float64 {
	return checkOut.Sub(checkIn).Hours()
}

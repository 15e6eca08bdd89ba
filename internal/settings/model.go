package settings

// app_settings はキー固定のシングルトン行。値はJSON。
const KeyLateThreshold = "late_threshold"

// LateThreshold: この時刻より「後」の出勤打刻を late にする（ちょうどはセーフ）
type LateThreshold struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// 行が無いときの既定値 09:15
var DefaultLateThreshold = LateThreshold{Hours: 9, Minutes: 15}

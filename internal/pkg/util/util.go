package util

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const trackingIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TrackingIDLength tracking id 扣掉前綴 # 的長度
const TrackingIDLength = 11

func GenerateOrderIDByUUID() string {
	return uuid.New().String()
}

// GenerateTrackingID 產生 # + 11 碼 [A-Z0-9] 的出貨追蹤編號
// 拒絕取樣保持均勻，uniqueness 由呼叫端 generate-check-retry 加 DB unique 約束保證
func GenerateTrackingID() string {
	// 252 是 <=256 的最大 36 倍數，超過的 byte 重抽避免餘數偏差
	const unbiasedLimit = 252

	buf := make([]byte, 0, TrackingIDLength)
	raw := make([]byte, 1)
	for len(buf) < TrackingIDLength {
		if _, err := rand.Read(raw); err != nil {
			// crypto/rand 失敗代表系統熵源壞掉，沒有合理的退路
			panic(err)
		}
		if int(raw[0]) >= unbiasedLimit {
			continue
		}
		buf = append(buf, trackingIDCharset[int(raw[0])%len(trackingIDCharset)])
	}
	return "#" + string(buf)
}

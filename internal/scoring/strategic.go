package scoring

import "strings"

// farmerHerderKeywords drives the farmer-herder conflict detector.
var farmerHerderKeywords = []string{
	"farmer", "herder", "herdsmen", "fulani", "pastoralist", "cattle", "grazing", "farmland", "livestock",
}

// isFarmerHerderConflict keyword-matches title, content, event type, and
// actor against farmerHerderKeywords.
func isFarmerHerderConflict(title, content, eventType, actor string) bool {
	haystack := strings.ToLower(title + " " + content + " " + eventType + " " + actor)
	for _, kw := range farmerHerderKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

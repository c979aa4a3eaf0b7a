package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TIMEKEEPER_TEST_MODE") == "" {
			_ = os.Setenv("TIMEKEEPER_TEST_MODE", "1")
		}
	})
}

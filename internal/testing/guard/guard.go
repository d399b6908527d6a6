package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("QUARRY_TEST_MODE") == "" {
			_ = os.Setenv("QUARRY_TEST_MODE", "1")
		}
	})
}

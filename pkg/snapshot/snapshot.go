package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var funcCount = make(map[string]int)

// ValidateSnapshot compares data (e.g., an encoded game log) against a file in testdata/
// If the snapshot file does not exist yet, it is written and the check passes
func ValidateSnapshot(t *testing.T, data []byte, depth int, msgAndArgs ...interface{}) {
	skip := 1 + depth

	pc, _, _, _ := runtime.Caller(skip)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	call := funcCount[funcName]
	funcCount[funcName] = call + 1

	filename := filepath.Join("testdata", fmt.Sprintf("%s-%d.yaml", funcName, call))

	expects, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			create(filename, data)
			return
		}

		panic(err)
	}

	t.Helper()
	if !assert.Equal(t, strings.Trim(string(expects), "\n"), strings.Trim(string(data), "\n"), msgAndArgs...) {
		t.Logf("snapshot %s", filename)
	}
}

func create(filename string, data []byte) {
	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		panic(err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		panic(err)
	}
}

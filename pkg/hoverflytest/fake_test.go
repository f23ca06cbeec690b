package hoverflytest

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/getmockd/hoverfly-go/pkg/adminclient"
)

// The test binary doubles as a fake hoverfly when these are set.
const (
	fakeEnv     = "HOVERFLYTEST_FAKE_HOVERFLY"
	fakeExitEnv = "HOVERFLYTEST_FAKE_EXIT"
)

func TestMain(m *testing.M) {
	if os.Getenv(fakeEnv) == "1" {
		os.Exit(runFake(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// fakeAdmin serves the parts of the admin API the harness uses.
type fakeAdmin struct {
	mu          sync.Mutex
	mode        adminclient.ModeView
	destination string
}

func (f *fakeAdmin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/api/health":
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Hoverfly is healthy"})
	case "/api/v2/hoverfly/mode":
		if r.Method == http.MethodPut {
			if err := json.NewDecoder(r.Body).Decode(&f.mode); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(f.mode)
	case "/api/v2/hoverfly/destination":
		if r.Method == http.MethodPut {
			var d adminclient.DestinationView
			if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.destination = d.Destination
		}
		_ = json.NewEncoder(w).Encode(adminclient.DestinationView{Destination: f.destination})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// runFake reads the hoverfly flags it needs from args and serves until killed.
func runFake(args []string) int {
	if os.Getenv(fakeExitEnv) == "1" {
		return 3
	}

	var proxyPort, adminPort string
	admin := &fakeAdmin{mode: adminclient.ModeView{Mode: adminclient.ModeSimulate}, destination: "."}
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "-pp":
			proxyPort = args[i+1]
		case "-ap":
			adminPort = args[i+1]
		case "-destination":
			admin.destination = args[i+1]
		}
	}

	proxy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("proxied " + r.URL.String()))
	})
	go func() { _ = http.ListenAndServe("localhost:"+proxyPort, proxy) }()
	if err := http.ListenAndServe("localhost:"+adminPort, admin); err != nil {
		return 1
	}
	return 0
}

package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/apidemo/internal/adapters/http/api"
	service "github.com/okian/apidemo/internal/app"
	"github.com/okian/apidemo/internal/domain/model"
	"github.com/okian/apidemo/internal/domain/profile"
	"github.com/okian/apidemo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer() (*httptest.Server, *service.Service) {
	svc := service.New()
	_ = svc.Start(context.Background())
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func testConfig(baseURL string) *Config {
	return &Config{BaseURL: baseURL, NumRequests: 50, Workers: 4, Timeout: 5 * time.Second}
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv, svc := newTestServer()
		defer srv.Close()
		defer svc.Stop()

		Convey("When running the smoke test", func() {
			stats, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then every case should verify", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 50)
				So(stats.Submitted, ShouldEqual, 50)
				So(stats.Successful, ShouldEqual, 50)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Mismatched, ShouldEqual, 0)
			})
		})

		Convey("When the service is stopped", func() {
			svc.Stop()
			_, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then the health check should fail", func() {
				So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that lies about ages", t, func() {
		srv := httptest.NewServer(lyingHandler())
		defer srv.Close()

		Convey("When running the smoke test", func() {
			stats, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then cases should be reported as mismatched", func() {
				So(errors.Is(err, ErrCasesRejected), ShouldBeTrue)
				So(stats.Mismatched, ShouldEqual, 50)
			})
		})
	})

	Convey("Given an unreachable service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("Then the run should fail fast", func() {
			_, err := Run(context.Background(), testConfig(url))
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})
}

// lyingHandler answers probes correctly but adds a year to every age.
func lyingHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/api1/hello", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello from api 1"))
	})
	mux.HandleFunc("POST /api/api2/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BirthDate string `json:"birth_date"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		birth, err := profile.ParseBirthDate(body.BirthDate)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		age, _ := profile.AgeInYears(birth, time.Now().UTC())
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(model.Profile{
			Name:   r.PathValue("name"),
			Age:    age + 1,
			Phones: strings.Split(r.URL.Query().Get("phone_numbers"), ","),
		})
		_, _ = w.Write(buf.Bytes())
	})
	return mux
}

func TestGenerateCases(t *testing.T) {
	Convey("Given a fixed today", t, func() {
		today := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

		Convey("When generating cases", func() {
			cases, err := GenerateCases(context.Background(), 200, today)

			Convey("Then each case should be valid and unique", func() {
				So(err, ShouldBeNil)
				So(len(cases), ShouldEqual, 200)
				seen := make(map[string]bool)
				for _, c := range cases {
					So(seen[c.Name], ShouldBeFalse)
					seen[c.Name] = true

					birth, err := profile.ParseBirthDate(c.BirthDate)
					So(err, ShouldBeNil)
					So(birth.After(today), ShouldBeFalse)

					phones := profile.SplitPhones(c.Phones)
					So(len(phones), ShouldBeBetweenOrEqual, 1, maxPhones)
				}
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := GenerateCases(ctx, 10, today)

			Convey("Then generation should stop", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a case and a fixed today", t, func() {
		today := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		c := Case{Name: "alice", BirthDate: "1990-01-01", Phones: "111-2222,333-4444"}
		good := model.Profile{Name: "alice", Age: 34, Phones: []string{"111-2222", "333-4444"}}

		Convey("Then a matching profile should verify", func() {
			So(Verify(c, good, today), ShouldBeNil)
		})

		Convey("Then a wrong age should be a mismatch", func() {
			bad := good
			bad.Age = 33
			So(errors.Is(Verify(c, bad, today), ErrMismatch), ShouldBeTrue)
		})

		Convey("Then a wrong name should be a mismatch", func() {
			bad := good
			bad.Name = "bob"
			So(errors.Is(Verify(c, bad, today), ErrMismatch), ShouldBeTrue)
		})

		Convey("Then reordered phones should be a mismatch", func() {
			bad := good
			bad.Phones = []string{"333-4444", "111-2222"}
			So(errors.Is(Verify(c, bad, today), ErrMismatch), ShouldBeTrue)
		})

		Convey("Then an unparsable case date should fail", func() {
			c.BirthDate = "nope"
			So(errors.Is(Verify(c, good, today), profile.ErrInvalidBirthDate), ShouldBeTrue)
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var buf bytes.Buffer
		ShowHelp(&buf)

		Convey("Then every flag should be documented", func() {
			for _, flag := range []string{"-url", "-requests", "-workers", "-timeout", "-verbose", "-help"} {
				So(buf.String(), ShouldContainSubstring, flag)
			}
		})
	})
}

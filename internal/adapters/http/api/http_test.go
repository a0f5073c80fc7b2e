package api_test

import (
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
	"github.com/okian/apidemo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps lets tests force failures the real service never produces.
type mockDeps struct {
	started bool
	err     error
	panics  bool
}

func (m *mockDeps) Greet(context.Context) string { return "mock" }

func (m *mockDeps) BuildProfile(_ context.Context, name, _, _ string) (model.Profile, error) {
	if m.panics {
		panic("boom")
	}
	if m.err != nil {
		return model.Profile{}, m.err
	}
	return model.Profile{Name: name}, nil
}

func (m *mockDeps) Started() bool { return m.started }

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func newService() *service.Service {
	svc := service.New(service.WithClock(func() time.Time {
		return time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	}))
	_ = svc.Start(context.Background())
	return svc
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer_Greeting(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newService()
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When requesting the greeting", func() {
			w := serve(mux, http.MethodGet, "/api/api1/hello", "")

			Convey("Then it should return the fixed text", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/plain; charset=utf-8")
				So(w.Body.String(), ShouldEqual, "hello from api 1")
				So(w.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			})
		})

		Convey("When requesting the greeting with a query string and headers", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/api1/hello?name=bob&x=1", http.NoBody)
			req.Header.Set("Accept", "application/json")
			req.Header.Set(api.HeaderRequestID, "req-42")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the body should be identical and the request id echoed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "hello from api 1")
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "req-42")
			})
		})

		Convey("When posting to the greeting route", func() {
			w := serve(mux, http.MethodPost, "/api/api1/hello", "")

			Convey("Then the method should not be allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestServer_Profile(t *testing.T) {
	Convey("Given a registered API server with a fixed clock", t, func() {
		svc := newService()
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When posting a valid profile request", func() {
			w := serve(mux, http.MethodPost,
				"/api/api2/hello/alice?phone_numbers=111-2222,333-4444",
				`{"birth_date":"1990-01-01"}`)

			Convey("Then it should return the composed profile", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var p model.Profile
				So(json.Unmarshal(w.Body.Bytes(), &p), ShouldBeNil)
				So(p.Name, ShouldEqual, "alice")
				So(int(p.Age), ShouldEqual, 34)
				So(p.Phones, ShouldResemble, []string{"111-2222", "333-4444"})
			})
		})

		Convey("When the phone list has a trailing comma", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=111-2222,", `{"birth_date":"1990-01-01"}`)

			Convey("Then the empty token should be kept", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"phones":["111-2222",""]`)
			})
		})

		Convey("When the phone list is present but empty", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=", `{"birth_date":"1990-01-01"}`)

			Convey("Then a single empty token should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"phones":[""]`)
			})
		})

		Convey("When the name is percent-encoded", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/J%C3%BCrgen%20K?phone_numbers=1", `{"birth_date":"1990-01-01"}`)

			Convey("Then the decoded name should be echoed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"name":"Jürgen K"`)
			})
		})

		Convey("When the body carries unknown fields", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"1990-01-01","extra":true}`)

			Convey("Then they should be ignored", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the birth date is not a date", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"not-a-date"}`)

			Convey("Then it should be a 400 with a diagnostic", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldContainSubstring, "birth_date")
				So(body["message"], ShouldContainSubstring, "not-a-date")
			})
		})

		Convey("When the birth date is an impossible calendar date", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"2020-13-01"}`)

			Convey("Then it should be a 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the birth date is in the future", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"2099-01-01"}`)

			Convey("Then it should be a 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldContainSubstring, "future")
			})
		})

		Convey("When the birth date is missing from the body", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{}`)

			Convey("Then it should name the missing field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldEqual, "missing birth_date")
			})
		})

		Convey("When the body is empty", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", "")

			Convey("Then it should be a 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldEqual, "missing request body")
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `birth_date=1990-01-01`)

			Convey("Then it should be a 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldEqual, "invalid JSON body")
			})
		})

		Convey("When the body has trailing data", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"1990-01-01"}{}`)

			Convey("Then it should be a 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When phone_numbers is missing", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice", `{"birth_date":"1990-01-01"}`)

			Convey("Then it should name the missing parameter", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldEqual, "missing phone_numbers")
			})
		})

		Convey("When the name segment is empty", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/?phone_numbers=1", `{"birth_date":"1990-01-01"}`)

			Convey("Then no route should match", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When using GET on the profile route", func() {
			w := serve(mux, http.MethodGet, "/api/api2/hello/alice?phone_numbers=1", "")

			Convey("Then the method should not be allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})

	Convey("Given a server with a tiny body limit", t, func() {
		svc := newService()
		defer svc.Stop()
		mux := newMux(svc, api.WithMaxBodyBytes(8))

		Convey("When the body exceeds it", func() {
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"1990-01-01"}`)

			Convey("Then it should be a 413", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(w)["code"], ShouldEqual, "body_too_large")
			})
		})
	})
}

func TestServer_Failures(t *testing.T) {
	Convey("Given a server whose dependencies misbehave", t, func() {
		Convey("When the dependency returns an unexpected error", func() {
			mux := newMux(&mockDeps{started: true, err: errors.New("disk on fire")})
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"1990-01-01"}`)

			Convey("Then it should be a 500 without leaking details", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldNotContainSubstring, "disk")
			})
		})

		Convey("When the dependency panics", func() {
			mux := newMux(&mockDeps{started: true, panics: true})
			w := serve(mux, http.MethodPost, "/api/api2/hello/alice?phone_numbers=1", `{"birth_date":"1990-01-01"}`)

			Convey("Then the panic should become a 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["message"], ShouldNotContainSubstring, "boom")
			})
		})
	})
}

func TestServer_Ops(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{started: true}
		mux := newMux(deps)

		Convey("When the service is started", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")

			Convey("Then health should be ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When the service is stopped", func() {
			deps.started = false
			w := serve(mux, http.MethodGet, "/healthz", "")

			Convey("Then health should be unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When scraping metrics after some traffic", func() {
			_ = serve(mux, http.MethodGet, "/api/api1/hello", "")
			w := serve(mux, http.MethodGet, "/metrics", "")

			Convey("Then request counters should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "apidemo_http_requests_total")
				So(w.Body.String(), ShouldContainSubstring, `endpoint="greeting"`)
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		server := api.NewServer(&mockDeps{})

		Convey("Then registering should panic", func() {
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestKindError(t *testing.T) {
	Convey("Given a wrapped kind error", t, func() {
		cause := errors.New("missing birth_date")
		err := api.WrapKind("api.post_profile", api.ErrBadRequest, cause)

		Convey("Then it should match both the kind and the cause", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, api.ErrInternal), ShouldBeFalse)
			So(err.Error(), ShouldEqual, "api.post_profile: bad request: missing birth_date")
			So(err.Message(), ShouldEqual, "missing birth_date")
		})

		Convey("And a bare kind should report the kind", func() {
			bare := api.NewKind("op", api.ErrInternal)
			So(bare.Error(), ShouldEqual, "op: internal error")
			So(bare.Message(), ShouldEqual, "internal error")
		})
	})
}

package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/apidemo/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestProfileJSON(t *testing.T) {
	convey.Convey("Given a Profile", t, func() {
		convey.Convey("When encoding a populated profile", func() {
			p := model.Profile{Name: "alice", Age: 34, Phones: []string{"111-2222", ""}}
			data, err := json.Marshal(p)

			convey.Convey("Then it should use the documented field names", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldEqual, `{"name":"alice","age":34,"phones":["111-2222",""]}`)
			})
		})

		convey.Convey("When encoding the maximum age", func() {
			data, err := json.Marshal(model.Profile{Name: "old", Age: 255, Phones: []string{""}})

			convey.Convey("Then age should be a plain number", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldContainSubstring, `"age":255`)
			})
		})
	})
}

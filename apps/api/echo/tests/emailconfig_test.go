package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
	emailsvc "github.com/acfjba/platformdigital-sub000/services/email"
)

func Test_emailConfigApi(t *testing.T) {
	app := setup(t)
	tn := app.newTenant(t, "eml")
	base := "/v1/schools/" + tn.school.ID + "/email-config"

	t.Run("primary admins only", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base, &tn.headTeacher, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("defaults", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, base, &tn.admin, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var conf emailconfig.Config
		unmarshal(t, rec, &conf)
		assert.False(t, conf.Enabled)
		assert.Equal(t, app.Conf.DefaultFromAddress, conf.FromAddress)
		assert.Equal(t, tn.school.ID, conf.SchoolID)
	})

	t.Run("send test while disabled", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/test", &tn.admin, emailconfig.TestRequest{To: "me@school.test"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error": "email is disabled for this school"}`, rec.Body.String())
		assert.Empty(t, emailsvc.GetSentMessages())
	})

	t.Run("upsert", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, base, &tn.admin, emailconfig.Input{FromName: "Eml School", FromAddress: "bad"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodPut, base, &tn.admin, emailconfig.Input{
			FromName: "Eml School", FromAddress: "Office@Eml.School", ReplyTo: "head@eml.school", Enabled: true,
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var conf emailconfig.Config
		unmarshal(t, rec, &conf)
		assert.True(t, conf.Enabled)
		assert.Equal(t, "office@eml.school", conf.FromAddress)
		assert.Equal(t, tn.admin.ID, conf.UpdatedBy)
	})

	t.Run("send test", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, base+"/test", &tn.admin, emailconfig.TestRequest{To: "me@school.test"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success": "Test email sent to me@school.test."}`, rec.Body.String())

		sent := emailsvc.GetSentMessages()
		if assert.Len(t, sent, 1) {
			msg := sent[0]
			assert.Equal(t, "me@school.test", msg.To[0].Address)
			if assert.NotNil(t, msg.From) {
				assert.Equal(t, "office@eml.school", msg.From.Address)
				assert.Equal(t, "Eml School", msg.From.Name)
			}
			if assert.NotNil(t, msg.ReplyTo) {
				assert.Equal(t, "head@eml.school", msg.ReplyTo.Address)
			}
			assert.Contains(t, msg.TextContent, tn.school.Name)
		}
	})
}

// internal/tests/users_test.go
package tests

import (
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/sales-ledger/internal/models"
)

func (suite *APITestSuite) loginAs(username, password string) (int, string) {
	w, env := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	var data struct {
		Token string `json:"token"`
	}
	if env.Success {
		suite.Require().NoError(json.Unmarshal(env.Data, &data))
	}
	return w.Code, data.Token
}

func (suite *APITestSuite) createOperator(token, username, password string) models.User {
	w, env := suite.do(http.MethodPost, "/api/admin/users", token, map[string]string{
		"username": username,
		"password": password,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		User models.User `json:"user"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	return data.User
}

func (suite *APITestSuite) TestAdminCreatesOperator() {
	token := suite.login()

	bob := suite.createOperator(token, "bob", "hunter22")
	assert.Equal(suite.T(), models.UserRoleOperator, bob.Role)
	assert.Equal(suite.T(), models.UserStatusActive, bob.Status)

	w, env := suite.do(http.MethodPost, "/api/admin/users", token, map[string]string{
		"username": "bob",
		"password": "another1",
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", env.Error.Code)

	code, bobToken := suite.loginAs("bob", "hunter22")
	suite.Require().Equal(http.StatusOK, code)

	w, _ = suite.do(http.MethodGet, "/api/store/sales", bobToken, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/admin/users", bobToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, env = suite.do(http.MethodGet, "/api/admin/users", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var users []models.User
	suite.Require().NoError(json.Unmarshal(env.Data, &users))
	assert.Len(suite.T(), users, 2)
}

func (suite *APITestSuite) TestCreateOperatorValidatesPassword() {
	token := suite.login()

	w, env := suite.do(http.MethodPost, "/api/admin/users", token, map[string]string{
		"username": "bob",
		"password": "123",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(suite.T(), string(env.Error.Details), "password")
}

func (suite *APITestSuite) TestSuspendedOperatorCannotLogIn() {
	token := suite.login()
	bob := suite.createOperator(token, "bob", "hunter22")

	w, _ := suite.do(http.MethodPut, "/api/admin/users/"+bob.ID.String()+"/status", token, map[string]string{
		"status": "suspended",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	code, _ := suite.loginAs("bob", "hunter22")
	assert.Equal(suite.T(), http.StatusForbidden, code)

	w, env := suite.do(http.MethodGet, "/api/admin/users?status=suspended", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var users []models.User
	suite.Require().NoError(json.Unmarshal(env.Data, &users))
	suite.Require().Len(users, 1)
	assert.Equal(suite.T(), "bob", users[0].Username)
}

func (suite *APITestSuite) TestAdminCannotChangeOwnStatus() {
	token := suite.login()

	w, env := suite.do(http.MethodGet, "/api/users/me", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var data struct {
		User models.User `json:"user"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	assert.Equal(suite.T(), "admin", data.User.Username)

	w, _ = suite.do(http.MethodPut, "/api/admin/users/"+data.User.ID.String()+"/status", token, map[string]string{
		"status": "suspended",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestChangePassword() {
	token := suite.login()

	w, _ := suite.do(http.MethodPut, "/api/users/me/password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "n3w-secret",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodPut, "/api/users/me/password", token, map[string]string{
		"current_password": "s3cret",
		"new_password":     "n3w-secret",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	code, _ := suite.loginAs("admin", "s3cret")
	assert.Equal(suite.T(), http.StatusUnauthorized, code)
	code, _ = suite.loginAs("admin", "n3w-secret")
	assert.Equal(suite.T(), http.StatusOK, code)
}

func (suite *APITestSuite) TestAdminStats() {
	token := suite.login()

	w, _ := suite.do(http.MethodPut, "/api/store/products", token, map[string]interface{}{
		"items": []map[string]interface{}{{"id": "p1", "name": "Widget", "quantity": 1, "price": "1"}},
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w, env := suite.do(http.MethodGet, "/api/admin/stats", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		Users struct {
			Total  int64 `json:"total"`
			Admins int64 `json:"admins"`
		} `json:"users"`
		Collections []struct {
			Name      string `json:"name"`
			Version   int64  `json:"version"`
			UpdatedBy string `json:"updated_by"`
		} `json:"collections"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &stats))
	assert.Equal(suite.T(), int64(1), stats.Users.Total)
	assert.Equal(suite.T(), int64(1), stats.Users.Admins)
	suite.Require().Len(stats.Collections, 3)
	assert.Equal(suite.T(), "products", stats.Collections[0].Name)
	assert.Equal(suite.T(), int64(1), stats.Collections[0].Version)
	assert.Equal(suite.T(), "admin", stats.Collections[0].UpdatedBy)
	assert.Zero(suite.T(), stats.Collections[1].Version)
}

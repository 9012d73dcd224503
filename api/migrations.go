/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"bytes"
	"net/http"

	"github.com/sirupsen/logrus"

	migrator "github.com/shreyank-the-integrator/user-account-creation"
	model2 "github.com/shreyank-the-integrator/user-account-creation/api/model"
	"github.com/shreyank-the-integrator/user-account-creation/internal/apierror"

	"github.com/gin-gonic/gin"
)

// RunMigration handles one migration run. The request is validated up front;
// a malformed body rejects the whole run before any remote call is made.
// Per-record failures never fail the request: the response always carries
// one outcome per input record.
//
// Responses:
// - 400 Bad Request: malformed body or invalid processing configuration.
// - 200 OK: full outcome list.
func (a Api) RunMigration(c *gin.Context) {
	var req model2.RunMigration
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := req.ValidateRunMigration(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	cfg, err := req.Config.ToProcessingConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	results, err := a.migrator.Run(c.Request.Context(), req.ToRecords(), cfg)
	if err != nil {
		apiErr := apierror.NewAPIError(apierror.ErrInvalidInput, "migration rejected", err.Error())
		c.JSON(apierror.MapErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ExportReport renders a previously returned outcome list as a downloadable
// CSV report.
//
// Responses:
// - 400 Bad Request: malformed body.
// - 200 OK: CSV attachment.
func (a Api) ExportReport(c *gin.Context) {
	var req model2.ExportReport
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var buf bytes.Buffer
	if err := migrator.WriteOutcomesCSV(&buf, req.Results); err != nil {
		apiErr := apierror.NewAPIError(apierror.ErrInternalServer, "failed to render report", err.Error())
		c.JSON(apierror.MapErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="migration_report.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/segqueue"
)

func TestCollectSystemInfo(t *testing.T) {
	info := collectSystemInfo()
	assert.Greater(t, info.NumCPU, 0)
	assert.NotEmpty(t, info.GOARCH)
}

func TestRunQueueReportsThroughput(t *testing.T) {
	q := segqueue.NewLinkQueue[int64]()
	r := runQueue("LinkQueue", q, 2, 2, 50*time.Millisecond)

	require.Equal(t, "LinkQueue", r.Queue)
	assert.Equal(t, 2, r.Producers)
	assert.Equal(t, 2, r.Consumers)
	assert.Equal(t, r.Enqueued, r.Dequeued, "runQueue drains everything producers left behind")
}

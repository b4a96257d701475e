package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repostsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_engine_reposts_total",
		Help: "The total number of repost actions",
	}, []string{"kind", "outcome"})

	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_engine_poll_votes_total",
		Help: "The total number of poll votes",
	}, []string{"target", "status"})

	bookmarksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_engine_bookmarks_total",
		Help: "The total number of bookmark changes",
	}, []string{"action"})

	postsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_engine_posts_deleted_total",
		Help: "The total number of posts removed, cascaded reposts included",
	})

	rowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_engine_feed_rows_dropped_total",
		Help: "The total number of feed entries hidden from the viewer",
	}, []string{"reason"})

	feedSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_engine_feed_rows",
		Help:    "Number of rows in a composed feed page",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

// Package design describes the architecture using the C4 model. Render it with
// "mdl serve github.com/sanLimbu/tasks-api/design".
package design

import . "goa.design/model/dsl"

var _ = Design("Tasks API", "Multi tenant task management service", func() {
	var System = SoftwareSystem("Tasks API", "Allows users to manage their tasks and categories", func() {
		Container("REST Server", "Serves the task, category and user endpoints", "Go", func() {
			Uses("PostgreSQL", "Reads from and writes to", "pgx", Synchronous)
			Uses("Memcached", "Caches tasks in", "gomemcache", Synchronous)
			Uses("Redis", "Stores session tokens in", "go-redis", Synchronous)
			Uses("Message Broker", "Publishes task events to", Asynchronous)
			Tag("service")
		})

		Container("ElasticSearch Indexer", "Keeps the task search index current", "Go", func() {
			Uses("Message Broker", "Consumes task events from", Asynchronous)
			Uses("ElasticSearch", "Indexes tasks in", "go-elasticsearch", Synchronous)
			Tag("service")
		})

		Container("PostgreSQL", "Stores users, categories and tasks", "PostgreSQL 14", func() {
			Tag("database")
		})

		Container("Memcached", "Caches task records", "Memcached", func() {
			Tag("database")
		})

		Container("Redis", "Stores session tokens", "Redis", func() {
			Tag("database")
		})

		Container("Message Broker", "Carries task lifecycle events", "Kafka or RabbitMQ", func() {
			Tag("broker")
		})

		Container("ElasticSearch", "Serves full text task search", "ElasticSearch 7", func() {
			Tag("database")
		})
	})

	Person("User", "A registered user managing their own tasks", func() {
		Uses(System, "Makes API requests to", "HTTPS/JSON", Synchronous)
		Tag("person")
	})

	Views(func() {
		SystemContextView(System, "Context", "System context diagram", func() {
			AddAll()
			AutoLayout(RankLeftRight)
		})

		ContainerView(System, "Containers", "Container diagram", func() {
			AddAll()
			AutoLayout(RankLeftRight)
		})

		Styles(func() {
			ElementStyle("person", func() {
				Shape(ShapePerson)
			})
			ElementStyle("database", func() {
				Shape(ShapeCylinder)
			})
		})
	})
})

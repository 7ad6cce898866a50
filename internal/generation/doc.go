// Package generation contains the concrete AI-backed services: campaign
// content, service-provider profiles, and campaign imagery. Each service
// holds its own execution engine with its own policy and delegates all
// resilience concerns (retries, deadlines, classification, schema
// enforcement) to the aiengine package.
package generation

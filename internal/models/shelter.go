package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON point as stored in MongoDB: coordinates are
// [longitude, latitude].
type GeoPoint struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"`
	FormattedAddress string    `bson:"formatted_address,omitempty" json:"formattedAddress,omitempty"`
}

type ContactInfo struct {
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
}

// Shelter represents a cataloged facility record. Location is nil when
// geocoding failed or no API key is configured.
type Shelter struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Address        string             `bson:"address" json:"address"`
	Location       *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	ContactInfo    ContactInfo        `bson:"contact_info,omitempty" json:"contactInfo"`
	Services       []string           `bson:"services" json:"services"`
	Capacity       int                `bson:"capacity,omitempty" json:"capacity,omitempty"`
	OperatingHours string             `bson:"operating_hours,omitempty" json:"operatingHours,omitempty"`
	Eligibility    string             `bson:"eligibility,omitempty" json:"eligibility,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	DateAdded      time.Time          `bson:"date_added" json:"dateAdded"`
	LastUpdated    time.Time          `bson:"last_updated" json:"lastUpdated"`
}

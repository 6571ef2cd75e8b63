package entity

import "time"

// Tipos de propiedad admitidos (coinciden con el CHECK de la tabla properties).
const (
	PropertyTypeAirBnB   = "AirBnB"
	PropertyTypePersonal = "Personal Home"
	PropertyTypeRental   = "Rental Property"
	PropertyTypeBusiness = "Business"
	PropertyTypeOther    = "Other"
)

// PropertyTypes lista los tipos válidos en el orden en que se muestran.
var PropertyTypes = []string{
	PropertyTypeAirBnB,
	PropertyTypePersonal,
	PropertyTypeRental,
	PropertyTypeBusiness,
	PropertyTypeOther,
}

// IsValidPropertyType indica si t es uno de los tipos admitidos.
func IsValidPropertyType(t string) bool {
	for _, v := range PropertyTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Property es el lugar donde se realizó el trabajo; pertenece a un único Customer.
type Property struct {
	ID         string
	CustomerID string
	Name       string
	Address    string
	Type       string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

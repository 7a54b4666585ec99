package directory

import (
	"context"
	"fmt"
)

// CountInstitutions returns the number of active institutions.
// Used at startup to decide whether default data should be seeded.
func (s *Store) CountInstitutions(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM institutions WHERE is_active = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count institutions: %w", err)
	}
	return count, nil
}

// SeedDefaults loads a small starter catalog so the bot is usable on a
// fresh database. Real deployments replace this with their own data.
func (s *Store) SeedDefaults(ctx context.Context) error {
	type deptSeed struct {
		name, nameAr, nameFr string
	}
	type unitSeed struct {
		name, nameAr, nameFr string
		departments          []deptSeed
	}
	type instSeed struct {
		inst  Institution
		units []unitSeed
	}

	seeds := []instSeed{
		{
			inst: Institution{
				Name:     "University of Batna 2",
				NameAr:   "جامعة باتنة 2",
				NameFr:   "Université Batna 2",
				City:     "Batna",
				Website:  "https://www.univ-batna2.dz",
				Email:    "contact@univ-batna2.dz",
				Phone:    "+213 33 00 00 00",
				Address:  "53 Route de Constantine, Fésdis, Batna",
				IsActive: true,
			},
			units: []unitSeed{
				{
					name: "Faculty of Mathematics and Computer Science", nameAr: "كلية الرياضيات والإعلام الآلي", nameFr: "Faculté de Mathématiques et Informatique",
					departments: []deptSeed{
						{"Department of Computer Science", "قسم الإعلام الآلي", "Département d'Informatique"},
						{"Department of Mathematics", "قسم الرياضيات", "Département de Mathématiques"},
					},
				},
				{
					name: "Faculty of Technology", nameAr: "كلية التكنولوجيا", nameFr: "Faculté de Technologie",
					departments: []deptSeed{
						{"Department of Electronics", "قسم الإلكترونيك", "Département d'Électronique"},
						{"Department of Civil Engineering", "قسم الهندسة المدنية", "Département de Génie Civil"},
					},
				},
			},
		},
		{
			inst: Institution{
				Name:     "University of Algiers 1",
				NameAr:   "جامعة الجزائر 1",
				NameFr:   "Université d'Alger 1",
				City:     "Algiers",
				Website:  "https://www.univ-alger.dz",
				Email:    "info@univ-alger.dz",
				Phone:    "+213 21 00 00 00",
				Address:  "2 Rue Didouche Mourad, Algiers",
				IsActive: true,
			},
			units: []unitSeed{
				{
					name: "Faculty of Sciences", nameAr: "كلية العلوم", nameFr: "Faculté des Sciences",
					departments: []deptSeed{
						{"Department of Physics", "قسم الفيزياء", "Département de Physique"},
						{"Department of Chemistry", "قسم الكيمياء", "Département de Chimie"},
					},
				},
			},
		},
	}

	for _, seed := range seeds {
		instID, err := s.SaveInstitution(ctx, &seed.inst)
		if err != nil {
			return err
		}
		for _, unit := range seed.units {
			unitID, err := s.SaveSubUnit(ctx, &SubUnit{
				InstitutionID: instID,
				Name:          unit.name,
				NameAr:        unit.nameAr,
				NameFr:        unit.nameFr,
				IsActive:      true,
			})
			if err != nil {
				return err
			}
			for _, dept := range unit.departments {
				if _, err := s.SaveDepartment(ctx, &Department{
					SubUnitID: unitID,
					Name:      dept.name,
					NameAr:    dept.nameAr,
					NameFr:    dept.nameFr,
					IsActive:  true,
				}); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
